package connector

import (
	"context"
	"time"
)

// Run statuses.
const (
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// Run describes one executed fetch. Only metadata is kept; rows are never
// persisted.
type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Endpoint  string        `json:"endpoint"`
	QueryHash string        `json:"query_hash"`
	Status    string        `json:"status"`
	ErrorCode string        `json:"error_code,omitempty"`
	RowCount  int           `json:"row_count"`
	Duration  time.Duration `json:"duration"`
}

// Recorder persists fetch runs.
type Recorder interface {
	RecordRun(ctx context.Context, run Run) error
}
