package interfaces

import (
	"context"

	"github.com/m-mizutani/loom/pkg/domain/model"
	"github.com/m-mizutani/loom/pkg/domain/types"
)

// Repository persists runs and their expanded jobs
type Repository interface {
	// CreateRun records a new run together with all of its jobs. Expansion
	// is atomic at trigger time: jobs never appear incrementally.
	CreateRun(ctx context.Context, run *model.Run, jobs []*model.Job) error

	// UpdateRun persists the current status and timestamps of a run
	UpdateRun(ctx context.Context, run *model.Run) error

	// UpdateJob persists the current status, error and timestamps of a job
	UpdateJob(ctx context.Context, job *model.Job) error

	// GetRun returns a run by ID
	GetRun(ctx context.Context, id types.RunID) (*model.Run, error)

	// ListRuns returns all runs, newest first
	ListRuns(ctx context.Context) ([]*model.Run, error)

	// ListJobs returns the jobs of a run in expansion order
	ListJobs(ctx context.Context, runID types.RunID) ([]*model.Job, error)

	// Close releases underlying resources
	Close() error
}
