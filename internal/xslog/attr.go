package xslog

import (
	"log/slog"
	"time"

	"github.com/kanohealth/vitalvault/internal/version"
)

func Error(err error) slog.Attr {
	const errorKey = "error"
	return slog.String(errorKey, err.Error())
}

func Count(count int) slog.Attr {
	const countKey = "count"
	return slog.Int(countKey, count)
}

func Start(t time.Time) slog.Attr {
	const startKey = "start"
	return slog.Time(startKey, t)
}

func End(t time.Time) slog.Attr {
	const endKey = "end"
	return slog.Time(endKey, t)
}

func Duration(d time.Duration) slog.Attr {
	const durationKey = "duration"
	return slog.Duration(durationKey, d)
}

func SyncID(id string) slog.Attr {
	const syncIDKey = "sync_id"
	return slog.String(syncIDKey, id)
}

func Step(step string) slog.Attr {
	const stepKey = "step"
	return slog.String(stepKey, step)
}

func Progress(p float64) slog.Attr {
	const progressKey = "progress"
	return slog.Float64(progressKey, p)
}

func Score(score int) slog.Attr {
	const scoreKey = "score"
	return slog.Int(scoreKey, score)
}

func Tier(tier string) slog.Attr {
	const tierKey = "tier"
	return slog.String(tierKey, tier)
}

func Days(days int) slog.Attr {
	const daysKey = "days"
	return slog.Int(daysKey, days)
}

func Records(records int) slog.Attr {
	const recordsKey = "records"
	return slog.Int(recordsKey, records)
}

func ContentHash(hash string) slog.Attr {
	const contentHashKey = "content_hash"
	return slog.String(contentHashKey, hash)
}

func URI(uri string) slog.Attr {
	const uriKey = "uri"
	return slog.String(uriKey, uri)
}

func Version() slog.Attr {
	const versionKey = "version"
	return slog.String(versionKey, version.Get())
}
