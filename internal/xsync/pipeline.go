package xsync

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kanohealth/vitalvault/internal/aggregate"
	"github.com/kanohealth/vitalvault/internal/client/attest"
	"github.com/kanohealth/vitalvault/internal/crypt"
	"github.com/kanohealth/vitalvault/internal/manifest"
	"github.com/kanohealth/vitalvault/internal/metric"
	"github.com/kanohealth/vitalvault/internal/score"
	"github.com/kanohealth/vitalvault/internal/store"
	"github.com/kanohealth/vitalvault/internal/xerrors"
	"github.com/kanohealth/vitalvault/internal/xslog"
)

// run drives the pipeline. Steps 1-4 are fetch and pure computation;
// steps 5-7 (encrypt, upload, attest) only execute if everything before
// them succeeded in full, so no partial manifest is ever uploaded.
func (s *Service) run(ctx context.Context, from time.Time) (*Result, error) {
	syncID := uuid.New().String()
	started := s.now()
	r := metric.DateRange{Start: from, End: started}

	s.logger.InfoContext(ctx, "starting full sync",
		xslog.SyncID(syncID),
		xslog.Start(r.Start),
		xslog.End(r.End))

	// step 1: fetch
	s.setProgress(0.0, "fetching samples")
	samples, err := s.source.Samples(ctx, r.Start, r.End)
	if err != nil {
		return s.fail(ctx, syncID, xerrors.SourceUnavailable(xerrors.WithCause(err)))
	}
	s.logger.InfoContext(ctx, "fetched samples", xslog.SyncID(syncID), xslog.Count(len(samples)))
	s.setProgress(0.4, "aggregating daily summaries")

	// step 2: aggregate
	days := aggregate.Aggregate(samples, r)
	s.setProgress(0.55, "scoring completeness")

	// step 3: score
	present := aggregate.MetricsPresent(days)
	completeness := score.Compute(present, len(days), aggregate.RecordCount(days))
	s.logger.InfoContext(ctx, "scored dataset",
		xslog.SyncID(syncID),
		xslog.Score(completeness.Score),
		xslog.Tier(string(completeness.Tier)),
		xslog.Days(completeness.DaysCovered),
		xslog.Records(completeness.RecordCount))
	s.setProgress(0.6, "building manifest")

	// step 4: manifest
	m := manifest.Build(days, completeness, manifest.BreakdownOf(samples), r, started)
	s.setProgress(0.65, "encrypting export payload")

	// step 5: serialize + encrypt
	plaintext, err := manifest.NewExport(m, days).Encode()
	if err != nil {
		return s.fail(ctx, syncID, xerrors.Encoding(xerrors.WithCause(err)))
	}
	sealed, err := crypt.Seal(s.key, plaintext)
	if err != nil {
		return s.fail(ctx, syncID, xerrors.Encoding(
			xerrors.WithMessage("failed to encrypt export payload"),
			xerrors.WithCause(err)))
	}
	s.setProgress(0.8, "uploading to vault")

	// step 6: upload
	stored, err := s.vault.Store(ctx, sealed, DataType, map[string]string{
		"wallet":       s.wallet,
		"export_date":  m.ExportDate,
		"record_count": strconv.Itoa(completeness.RecordCount),
	})
	if err != nil {
		return s.fail(ctx, syncID, xerrors.Network(
			xerrors.WithMessage("failed to upload export payload"),
			xerrors.WithCause(err)))
	}
	if stored.ContentHash == "" {
		// an attestation without a content hash binds nothing
		return s.fail(ctx, syncID, xerrors.Internal(
			xerrors.WithMessage("vault returned no content hash")))
	}
	s.logger.InfoContext(ctx, "uploaded export payload",
		xslog.SyncID(syncID),
		xslog.URI(stored.URI),
		xslog.ContentHash(stored.ContentHash))
	s.setProgress(0.95, "submitting attestation")

	// step 7: attest
	if _, err := s.attester.Submit(ctx, attest.Submission{
		ContentHash:       stored.ContentHash,
		DataType:          DataType,
		StartDate:         m.DateRange.Start,
		EndDate:           m.DateRange.End,
		CompletenessScore: completeness.Score,
		RecordCount:       completeness.RecordCount,
		CoreComplete:      completeness.CoreComplete,
	}); err != nil {
		return s.fail(ctx, syncID, xerrors.Network(
			xerrors.WithMessage("failed to submit attestation"),
			xerrors.WithCause(err)))
	}

	// step 8: terminal transition
	result := &Result{
		Success:      true,
		Tier:         completeness.Tier,
		Score:        completeness.Score,
		MetricsCount: len(present),
		DaysCovered:  completeness.DaysCovered,
	}
	s.setState(State{
		Phase:    PhaseSucceeded,
		Progress: 1.0,
		Message:  "sync complete",
		Result:   result,
	})
	s.persist(ctx, syncID, result)

	s.logger.InfoContext(ctx, "sync complete",
		xslog.SyncID(syncID),
		xslog.Duration(s.now().Sub(started)),
		xslog.Tier(string(result.Tier)))

	return result, nil
}

func (s *Service) fail(ctx context.Context, syncID string, err error) (*Result, error) {
	result := &Result{
		Success: false,
		Error:   xerrors.UserMessage(err),
	}
	s.setState(State{
		Phase:   PhaseFailed,
		Message: result.Error,
		Result:  result,
		Err:     err,
	})
	s.persist(ctx, syncID, result)

	s.logger.ErrorContext(ctx, "sync failed", xslog.SyncID(syncID), xslog.Error(err))
	return result, err
}

// persist writes the terminal outcome. A persistence failure does not
// change the sync outcome; it only loses the record.
func (s *Service) persist(ctx context.Context, syncID string, result *Result) {
	rec := store.SyncRecord{
		ID:           syncID,
		CreatedAt:    s.now(),
		Success:      result.Success,
		Tier:         string(result.Tier),
		Score:        result.Score,
		MetricsCount: result.MetricsCount,
		DaysCovered:  result.DaysCovered,
		Error:        result.Error,
	}
	if err := s.recorder.Append(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "failed to persist sync result", xslog.SyncID(syncID), xslog.Error(err))
	}
}
