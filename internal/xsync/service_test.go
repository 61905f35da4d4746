package xsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kanohealth/vitalvault/internal/client/attest"
	"github.com/kanohealth/vitalvault/internal/client/vault"
	"github.com/kanohealth/vitalvault/internal/crypt"
	"github.com/kanohealth/vitalvault/internal/manifest"
	"github.com/kanohealth/vitalvault/internal/metric"
	"github.com/kanohealth/vitalvault/internal/store"
	"github.com/kanohealth/vitalvault/internal/xerrors"
)

type fakeSource struct {
	mu      sync.Mutex
	samples []metric.RawSample
	err     error
	calls   int
	starts  []time.Time
	onFetch func()
}

func (f *fakeSource) Samples(_ context.Context, start, _ time.Time) ([]metric.RawSample, error) {
	if f.onFetch != nil {
		f.onFetch()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.starts = append(f.starts, start)
	if f.err != nil {
		return nil, f.err
	}
	return f.samples, nil
}

type fakeVault struct {
	mu       sync.Mutex
	err      error
	noHash   bool
	payloads [][]byte
}

func (f *fakeVault) Store(_ context.Context, payload []byte, _ string, _ map[string]string) (*vault.StoreResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, payload)
	hash := fmt.Sprintf("hash-%d", len(f.payloads))
	if f.noHash {
		hash = ""
	}
	return &vault.StoreResult{
		URI:         fmt.Sprintf("vault://exports/%d", len(f.payloads)),
		ContentHash: hash,
		Size:        int64(len(payload)),
	}, nil
}

func (f *fakeVault) stores() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type fakeAttester struct {
	mu   sync.Mutex
	err  error
	subs []attest.Submission
}

func (f *fakeAttester) Submit(_ context.Context, sub attest.Submission) (*attest.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.subs = append(f.subs, sub)
	return &attest.Receipt{Timestamp: time.Now()}, nil
}

type memRecorder struct {
	mu   sync.Mutex
	recs []store.SyncRecord
}

func (m *memRecorder) Append(_ context.Context, rec store.SyncRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memRecorder) Last(_ context.Context) (*store.SyncRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.recs) == 0 {
		return nil, nil
	}
	rec := m.recs[len(m.recs)-1]
	return &rec, nil
}

var testBase = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func testSamples() []metric.RawSample {
	var samples []metric.RawSample
	for day := 0; day < 3; day++ {
		at := testBase.AddDate(0, 0, day).Add(9 * time.Hour)
		samples = append(samples,
			metric.RawSample{MetricID: metric.Steps, Value: 4000, Start: at, End: at.Add(time.Minute), SourceTag: "watch"},
			metric.RawSample{MetricID: metric.HeartRate, Value: 72, Start: at, End: at.Add(time.Minute), SourceTag: "watch"},
		)
	}
	return samples
}

func testService(t *testing.T, src *fakeSource, vlt *fakeVault, att *fakeAttester, opts ...ServiceOption) (*Service, *memRecorder) {
	t.Helper()

	key := make([]byte, crypt.KeySize)
	rec := &memRecorder{}
	now := testBase.AddDate(0, 0, 7)

	opts = append([]ServiceOption{
		WithClock(func() time.Time { return now }),
		WithWalletAddress("0xabc"),
	}, opts...)

	return NewService(src, vlt, att, rec, key, slog.New(slog.DiscardHandler), opts...), rec
}

func TestPerformFullSyncSucceeds(t *testing.T) {
	t.Parallel()

	src := &fakeSource{samples: testSamples()}
	vlt := &fakeVault{}
	att := &fakeAttester{}
	svc, rec := testService(t, src, vlt, att)

	result, err := svc.PerformFullSync(context.Background(), testBase)
	if err != nil {
		t.Fatal(err)
	}

	if !result.Success {
		t.Error("result.Success = false")
	}
	if result.DaysCovered != 3 || result.MetricsCount != 2 {
		t.Errorf("result = %+v", result)
	}

	if st := svc.State(); st.Phase != PhaseSucceeded || st.Progress != 1.0 {
		t.Errorf("state = %+v", st)
	}

	if vlt.stores() != 1 {
		t.Errorf("vault stores = %d, want 1", vlt.stores())
	}
	if len(att.subs) != 1 {
		t.Fatalf("attestations = %d, want 1", len(att.subs))
	}
	sub := att.subs[0]
	if sub.ContentHash != "hash-1" || sub.DataType != DataType {
		t.Errorf("submission = %+v", sub)
	}
	if sub.RecordCount != 6 {
		t.Errorf("submission record count = %d, want 6", sub.RecordCount)
	}

	last, err := rec.Last(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || !last.Success || last.DaysCovered != 3 {
		t.Errorf("persisted record = %+v", last)
	}
}

func TestPerformFullSyncProgressMonotonic(t *testing.T) {
	t.Parallel()

	var states []State
	src := &fakeSource{samples: testSamples()}
	svc, _ := testService(t, src, &fakeVault{}, &fakeAttester{},
		WithProgressFunc(func(st State) { states = append(states, st) }))

	if _, err := svc.PerformFullSync(context.Background(), testBase); err != nil {
		t.Fatal(err)
	}

	if len(states) == 0 {
		t.Fatal("no progress reported")
	}
	prev := -1.0
	for _, st := range states {
		if st.Progress < prev {
			t.Fatalf("progress went backwards: %v -> %v (%s)", prev, st.Progress, st.Message)
		}
		prev = st.Progress
	}
	final := states[len(states)-1]
	if final.Phase != PhaseSucceeded || final.Progress != 1.0 {
		t.Errorf("final state = %+v", final)
	}
}

func TestPerformFullSyncFetchFailureUploadsNothing(t *testing.T) {
	t.Parallel()

	src := &fakeSource{err: errors.New("authorization revoked")}
	vlt := &fakeVault{}
	att := &fakeAttester{}
	svc, rec := testService(t, src, vlt, att)

	result, err := svc.PerformFullSync(context.Background(), testBase)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !xerrors.IsKind(err, xerrors.KindSourceUnavailable) {
		t.Errorf("error kind = %v", err)
	}
	if result == nil || result.Success {
		t.Errorf("result = %+v", result)
	}

	// no partial upload, ever
	if vlt.stores() != 0 {
		t.Errorf("vault stores = %d, want 0", vlt.stores())
	}
	if len(att.subs) != 0 {
		t.Errorf("attestations = %d, want 0", len(att.subs))
	}

	if st := svc.State(); st.Phase != PhaseFailed {
		t.Errorf("state = %+v", st)
	}
	last, _ := rec.Last(context.Background())
	if last == nil || last.Success {
		t.Errorf("persisted record = %+v", last)
	}
}

func TestPerformFullSyncBadKeyFailsBeforeUpload(t *testing.T) {
	t.Parallel()

	src := &fakeSource{samples: testSamples()}
	vlt := &fakeVault{}
	att := &fakeAttester{}
	rec := &memRecorder{}
	svc := NewService(src, vlt, att, rec, []byte("too short"), slog.New(slog.DiscardHandler))

	_, err := svc.PerformFullSync(context.Background(), testBase)
	if !xerrors.IsKind(err, xerrors.KindEncoding) {
		t.Errorf("error kind = %v, want encoding failure", err)
	}
	if vlt.stores() != 0 {
		t.Errorf("vault stores = %d, want 0", vlt.stores())
	}
}

func TestPerformFullSyncCountsOnlyInRangeSamples(t *testing.T) {
	t.Parallel()

	// sources may return samples overlapping the window boundary; the
	// attested record count covers only what the aggregator kept
	early := metric.RawSample{
		MetricID: metric.Steps,
		Value:    9999,
		Start:    testBase.Add(-2 * time.Hour),
		End:      testBase.Add(-2*time.Hour + time.Minute),
	}
	src := &fakeSource{samples: append(testSamples(), early)}
	att := &fakeAttester{}
	svc, _ := testService(t, src, &fakeVault{}, att)

	result, err := svc.PerformFullSync(context.Background(), testBase)
	if err != nil {
		t.Fatal(err)
	}
	if result.DaysCovered != 3 {
		t.Errorf("days covered = %d, want 3", result.DaysCovered)
	}
	if len(att.subs) != 1 {
		t.Fatalf("attestations = %d, want 1", len(att.subs))
	}
	if got := att.subs[0].RecordCount; got != 6 {
		t.Errorf("attested record count = %d, want 6 (out-of-range sample excluded)", got)
	}
}

func TestPerformFullSyncMissingContentHashSkipsAttestation(t *testing.T) {
	t.Parallel()

	src := &fakeSource{samples: testSamples()}
	vlt := &fakeVault{noHash: true}
	att := &fakeAttester{}
	svc, _ := testService(t, src, vlt, att)

	_, err := svc.PerformFullSync(context.Background(), testBase)
	if !xerrors.IsKind(err, xerrors.KindInternal) {
		t.Errorf("error kind = %v, want internal", err)
	}
	if len(att.subs) != 0 {
		t.Errorf("attestations = %d, want 0 without a content hash", len(att.subs))
	}
}

func TestPerformFullSyncUploadFailureSkipsAttestation(t *testing.T) {
	t.Parallel()

	src := &fakeSource{samples: testSamples()}
	vlt := &fakeVault{err: errors.New("connection reset")}
	att := &fakeAttester{}
	svc, _ := testService(t, src, vlt, att)

	_, err := svc.PerformFullSync(context.Background(), testBase)
	if !xerrors.IsKind(err, xerrors.KindNetwork) {
		t.Errorf("error kind = %v, want network failure", err)
	}
	if len(att.subs) != 0 {
		t.Errorf("attestations = %d, want 0", len(att.subs))
	}
}

func TestPerformFullSyncRejectsConcurrent(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{samples: testSamples()}
	src.onFetch = func() {
		close(started)
		<-release
	}
	svc, _ := testService(t, src, &fakeVault{}, &fakeAttester{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.PerformFullSync(context.Background(), testBase)
		done <- err
	}()

	<-started
	if _, err := svc.PerformFullSync(context.Background(), testBase); !errors.Is(err, ErrSyncInFlight) {
		t.Errorf("got %v, want ErrSyncInFlight", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestRetrySyncPreservesFromDate(t *testing.T) {
	t.Parallel()

	src := &fakeSource{err: errors.New("flaky")}
	svc, _ := testService(t, src, &fakeVault{}, &fakeAttester{})

	_, _ = svc.PerformFullSync(context.Background(), testBase)

	src.mu.Lock()
	src.err = nil
	src.samples = testSamples()
	src.mu.Unlock()

	if _, err := svc.RetrySync(context.Background()); err != nil {
		t.Fatal(err)
	}

	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2 (retry re-runs the full pipeline)", src.calls)
	}
	if !src.starts[0].Equal(src.starts[1]) {
		t.Errorf("retry used from %v, want preserved %v", src.starts[1], src.starts[0])
	}
}

func TestRetrySyncWithoutPreviousSync(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, &fakeSource{}, &fakeVault{}, &fakeAttester{})
	if _, err := svc.RetrySync(context.Background()); !errors.Is(err, ErrNoPreviousSync) {
		t.Errorf("got %v, want ErrNoPreviousSync", err)
	}
}

func TestPerformFullSyncIdempotent(t *testing.T) {
	t.Parallel()

	src := &fakeSource{samples: testSamples()}
	vlt := &fakeVault{}
	svc, _ := testService(t, src, vlt, &fakeAttester{})

	key := make([]byte, crypt.KeySize)
	for i := 0; i < 2; i++ {
		if _, err := svc.PerformFullSync(context.Background(), testBase); err != nil {
			t.Fatal(err)
		}
	}

	if vlt.stores() != 2 {
		t.Fatalf("vault stores = %d, want 2", vlt.stores())
	}

	exports := make([]*manifest.Export, 2)
	for i, sealed := range vlt.payloads {
		plaintext, err := crypt.Open(key, sealed)
		if err != nil {
			t.Fatal(err)
		}
		exports[i], err = manifest.Decode(plaintext)
		if err != nil {
			t.Fatal(err)
		}
	}

	if diff := cmp.Diff(exports[0].Manifest, exports[1].Manifest); diff != "" {
		t.Errorf("manifests differ across identical syncs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(exports[0].Days, exports[1].Days); diff != "" {
		t.Errorf("summaries differ across identical syncs (-first +second):\n%s", diff)
	}
}
