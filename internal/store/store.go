package store

import (
	"context"
	"errors"

	"github.com/groblegark/loom/internal/model"
)

// ErrNotFound is returned when a run does not exist in the registry.
var ErrNotFound = errors.New("run not found")

// Store defines the persistence interface for the run registry.
type Store interface {
	// RecordRun persists a run together with its per-model results.
	RecordRun(ctx context.Context, run *model.Run) error
	// GetRun loads a run by invocation ID, results included.
	GetRun(ctx context.Context, invocationID string) (*model.Run, error)
	// ListRuns returns the most recent runs, newest first, without results.
	ListRuns(ctx context.Context, limit int) ([]*model.Run, error)

	// Lifecycle
	Close() error
}
