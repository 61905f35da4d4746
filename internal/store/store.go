// Package store persists sync outcomes in a local sqlite database: the
// last terminal result plus an append-only history. Written only by the
// orchestrator on terminal transition; read freely by anything else.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_results (
	id            TEXT PRIMARY KEY,
	created_at    TIMESTAMP NOT NULL,
	success       INTEGER NOT NULL,
	tier          TEXT NOT NULL DEFAULT '',
	score         INTEGER NOT NULL DEFAULT 0,
	metrics_count INTEGER NOT NULL DEFAULT 0,
	days_covered  INTEGER NOT NULL DEFAULT 0,
	error         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sync_results_created_at ON sync_results(created_at DESC);
`

// SyncRecord is one persisted sync outcome.
type SyncRecord struct {
	ID           string
	CreatedAt    time.Time
	Success      bool
	Tier         string
	Score        int
	MetricsCount int
	DaysCovered  int
	Error        string
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append records a terminal sync outcome.
func (s *Store) Append(ctx context.Context, rec SyncRecord) error {
	const query = `
INSERT INTO sync_results (id, created_at, success, tier, score, metrics_count, days_covered, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var success int64
	if rec.Success {
		success = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.CreatedAt, success, rec.Tier, rec.Score,
		rec.MetricsCount, rec.DaysCovered, rec.Error,
	)
	return err
}

// Last returns the most recent sync outcome, or nil when no sync has run.
func (s *Store) Last(ctx context.Context) (*SyncRecord, error) {
	const query = `
SELECT id, created_at, success, tier, score, metrics_count, days_covered, error
FROM sync_results ORDER BY created_at DESC LIMIT 1`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// History returns up to limit recent sync outcomes, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]SyncRecord, error) {
	const query = `
SELECT id, created_at, success, tier, score, metrics_count, days_covered, error
FROM sync_results ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []SyncRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*SyncRecord, error) {
	var (
		rec     SyncRecord
		success int64
	)
	if err := row.Scan(
		&rec.ID, &rec.CreatedAt, &success, &rec.Tier, &rec.Score,
		&rec.MetricsCount, &rec.DaysCovered, &rec.Error,
	); err != nil {
		return nil, err
	}
	rec.Success = success == 1
	return &rec, nil
}
