// Package store persists validation run history. The engine itself is
// stateless; stores exist so operators can review past reports.
package store

import (
	"context"

	"github.com/sells-group/leadcheck/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Source string          `json:"source,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for validation runs.
type Store interface {
	CreateRun(ctx context.Context, source string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, report *model.ValidationReport) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
