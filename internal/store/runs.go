package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/sparqlconn/internal/connector"
)

// Fixed-width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ connector.Recorder = (*Store)(nil)

// RecordRun inserts a fetch run. Uses ON CONFLICT(id) DO NOTHING, so a run
// recorded twice is kept once.
func (s *Store) RecordRun(ctx context.Context, run connector.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fetch_runs
		(id, started_at, endpoint, query_hash, status, error_code, row_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.Endpoint,
		run.QueryHash,
		run.Status,
		run.ErrorCode,
		run.RowCount,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]connector.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.Query(ctx, `
		SELECT id, started_at, endpoint, query_hash, status, error_code, row_count, duration_ms
		FROM fetch_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []connector.Run{}
	for rows.Next() {
		var (
			run        connector.Run
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&run.ID, &startedAt, &run.Endpoint, &run.QueryHash,
			&run.Status, &run.ErrorCode, &run.RowCount, &durationMS); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		run.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("list runs: run %s: bad started_at %q: %w", run.ID, startedAt, err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
