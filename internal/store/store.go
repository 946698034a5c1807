// Package store persists fill runs so analysts can revisit past
// submissions.
package store

import (
	"context"

	"github.com/sells-group/pricing-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	CentreID string          `json:"centre_id,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for fill runs.
type Store interface {
	CreateRun(ctx context.Context, req model.FillRequest) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, status model.RunStatus, result *model.FillResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
