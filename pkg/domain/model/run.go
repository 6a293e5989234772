package model

import (
	"time"

	"github.com/m-mizutani/loom/pkg/domain/types"
)

// RunStatus represents the aggregate state of a run
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one triggered execution of a workflow: the expanded set of jobs
// plus trigger metadata. A run succeeds only if every job succeeded.
type Run struct {
	ID         types.RunID `json:"id"`
	Workflow   string      `json:"workflow"`
	Event      EventType   `json:"event"`
	Repository string      `json:"repository"`
	CommitSHA  string      `json:"commit_sha"`
	Ref        string      `json:"ref"`
	Status     RunStatus   `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// AggregateStatus derives a run status from its job statuses. Failure of any
// job fails the run; success requires every job to have succeeded.
func AggregateStatus(jobs []*Job) RunStatus {
	if len(jobs) == 0 {
		return RunStatusSucceeded
	}

	allDone := true
	anyFailed := false
	for _, job := range jobs {
		switch job.Status {
		case JobStatusFailed:
			anyFailed = true
		case JobStatusSucceeded:
		default:
			allDone = false
		}
	}

	switch {
	case anyFailed && allDone:
		return RunStatusFailed
	case allDone:
		return RunStatusSucceeded
	default:
		return RunStatusRunning
	}
}
