// Package xsync orchestrates the full synchronization pipeline: fetch,
// aggregate, score, build manifest, encrypt, upload, attest. It owns the
// only mutable long-lived state in the system and is the only component
// performing I/O beyond pure computation.
package xsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kanohealth/vitalvault/internal/client/attest"
	"github.com/kanohealth/vitalvault/internal/client/vault"
	"github.com/kanohealth/vitalvault/internal/metric"
	"github.com/kanohealth/vitalvault/internal/store"
	"github.com/kanohealth/vitalvault/internal/xslog"
)

// DataType tags export payloads in the vault and the attestation registry.
const DataType = "health_export_v1"

// ErrSyncInFlight is returned when a sync request arrives while another is
// in progress. Concurrent syncs would interleave writes to the same state
// and the same persisted result, so they are rejected, never queued.
var ErrSyncInFlight = errors.New("a sync is already in progress")

// ErrNoPreviousSync is returned by RetrySync before any sync has run.
var ErrNoPreviousSync = errors.New("no previous sync to retry")

// SampleSource yields typed raw samples for a time range.
type SampleSource interface {
	Samples(ctx context.Context, start, end time.Time) ([]metric.RawSample, error)
}

// BlobStore receives the encrypted export payload.
type BlobStore interface {
	Store(ctx context.Context, payload []byte, dataType string, metadata map[string]string) (*vault.StoreResult, error)
}

// Attester records the attestation for an uploaded payload.
type Attester interface {
	Submit(ctx context.Context, sub attest.Submission) (*attest.Receipt, error)
}

// Recorder persists terminal sync outcomes.
type Recorder interface {
	Append(ctx context.Context, rec store.SyncRecord) error
	Last(ctx context.Context) (*store.SyncRecord, error)
}

type Service struct {
	source   SampleSource
	vault    BlobStore
	attester Attester
	recorder Recorder

	key    []byte
	wallet string
	logger *slog.Logger

	onProgress func(State)
	now        func() time.Time

	// sem admits one sync at a time; TryAcquire failure means in flight.
	sem *semaphore.Weighted

	mu    sync.RWMutex
	state State
	from  time.Time
}

func NewService(
	source SampleSource,
	blobStore BlobStore,
	attester Attester,
	recorder Recorder,
	key []byte,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		source:   source,
		vault:    blobStore,
		attester: attester,
		recorder: recorder,
		key:      key,
		logger:   logger,
		now:      time.Now,
		sem:      semaphore.NewWeighted(1),
		state:    State{Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ServiceOption func(*Service)

// WithProgressFunc registers an observer called on every state
// transition, including each progress update while syncing.
func WithProgressFunc(fn func(State)) ServiceOption {
	return func(s *Service) { s.onProgress = fn }
}

func WithWalletAddress(addr string) ServiceOption {
	return func(s *Service) { s.wallet = addr }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// PerformFullSync runs the pipeline over [from, now]. It returns
// ErrSyncInFlight without touching any state if a sync is already
// running. A started sync runs to completion or failure; mid-flight
// cancellation is not supported.
func (s *Service) PerformFullSync(ctx context.Context, from time.Time) (*Result, error) {
	if !s.sem.TryAcquire(1) {
		return nil, ErrSyncInFlight
	}
	defer s.sem.Release(1)

	s.mu.Lock()
	s.from = from
	s.mu.Unlock()

	return s.run(ctx, from)
}

// RetrySync re-runs the full pipeline from the fetch step, preserving the
// previously requested from date. Redundant re-fetching is the accepted
// cost: sync is infrequent and restart-from-scratch keeps retry
// correctness-preserving.
func (s *Service) RetrySync(ctx context.Context) (*Result, error) {
	s.mu.RLock()
	from := s.from
	s.mu.RUnlock()

	if from.IsZero() {
		return nil, ErrNoPreviousSync
	}

	if !s.sem.TryAcquire(1) {
		return nil, ErrSyncInFlight
	}
	defer s.sem.Release(1)

	return s.run(ctx, from)
}

// State returns the current state machine value.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastResult returns the persisted outcome of the most recent sync, or
// nil when no sync has completed yet.
func (s *Service) LastResult(ctx context.Context) (*store.SyncRecord, error) {
	return s.recorder.Last(ctx)
}

func (s *Service) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	if s.onProgress != nil {
		s.onProgress(st)
	}
}

func (s *Service) setProgress(progress float64, message string) {
	s.logger.Debug("sync progress", xslog.Step(message), xslog.Progress(progress))
	s.setState(State{
		Phase:    PhaseSyncing,
		Progress: progress,
		Message:  message,
	})
}
