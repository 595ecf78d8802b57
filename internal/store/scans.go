package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ScanRun is one recorded folder scan
type ScanRun struct {
	ID          int64
	Root        string
	StartedAt   time.Time
	CompletedAt time.Time
	Videos      int
	Sidecars    int
	Skipped     int
	Error       string
}

// Duration returns how long the scan took
func (r *ScanRun) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// RecordScan inserts a completed scan run and sets its ID
func (s *Store) RecordScan(run *ScanRun) error {
	var completed interface{}
	if !run.CompletedAt.IsZero() {
		completed = run.CompletedAt.UTC()
	}

	result, err := s.db.Exec(`
		INSERT INTO scan_runs (root, started_at, completed_at, videos, sidecars, skipped, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.Root, run.StartedAt.UTC(), completed, run.Videos, run.Sidecars, run.Skipped, run.Error)
	if err != nil {
		return fmt.Errorf("failed to record scan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get scan id: %w", err)
	}
	run.ID = id
	return nil
}

// RecentScans returns the latest scan runs, newest first
func (s *Store) RecentScans(limit int) ([]*ScanRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, root, started_at, completed_at,
		       COALESCE(videos, 0), COALESCE(sidecars, 0), COALESCE(skipped, 0),
		       COALESCE(error, '')
		FROM scan_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []*ScanRun
	for rows.Next() {
		run := &ScanRun{}
		var completed sql.NullTime
		if err := rows.Scan(&run.ID, &run.Root, &run.StartedAt, &completed,
			&run.Videos, &run.Sidecars, &run.Skipped, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if completed.Valid {
			run.CompletedAt = completed.Time
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
