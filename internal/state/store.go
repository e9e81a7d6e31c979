// Package state keeps the history of pipeline runs in SQLite.
//
// Every CLI invocation runs the pipeline from scratch in a throwaway DuckDB
// session; the history is what survives it: when a run happened, how long it
// took, what it saw, and why it failed.
package state

import (
	"context"
	"time"
)

// RunStatus is the outcome of a pipeline run.
type RunStatus string

// Run outcomes.
const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded pipeline run.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Status    RunStatus
	DataDir   string
	Grouping  string
	Regions   int
	Dates     int
	Dropped   int64
	// Defaulted lists the regions that fell back to the default population divisor.
	Defaulted []string
	Error     string
}

// Store records and lists runs.
type Store interface {
	RecordRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListRuns returns at most limit runs, newest first. A limit <= 0 returns all runs.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	// PruneRuns deletes all but the newest keep runs and returns how many were deleted.
	PruneRuns(ctx context.Context, keep int) (int64, error)
	Close() error
}
