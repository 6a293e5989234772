package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/loom/pkg/domain/interfaces"
	"github.com/m-mizutani/loom/pkg/domain/model"
	"github.com/m-mizutani/loom/pkg/domain/types"
)

// memoryRepo keeps runs and jobs in process memory. Used by tests and by
// one-shot local runs that don't need a database.
type memoryRepo struct {
	mu   sync.RWMutex
	runs map[types.RunID]*model.Run
	jobs map[types.RunID][]*model.Job
}

func NewMemory() interfaces.Repository {
	return &memoryRepo{
		runs: map[types.RunID]*model.Run{},
		jobs: map[types.RunID][]*model.Job{},
	}
}

func (r *memoryRepo) CreateRun(ctx context.Context, run *model.Run, jobs []*model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return goerr.New("run already exists", goerr.V("run_id", run.ID))
	}

	copied := *run
	r.runs[run.ID] = &copied
	for _, job := range jobs {
		jobCopy := *job
		r.jobs[run.ID] = append(r.jobs[run.ID], &jobCopy)
	}
	return nil
}

func (r *memoryRepo) UpdateRun(ctx context.Context, run *model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; !exists {
		return goerr.New("record not found", goerr.V("kind", "run"), goerr.V("id", run.ID))
	}
	copied := *run
	r.runs[run.ID] = &copied
	return nil
}

func (r *memoryRepo) UpdateJob(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.jobs[job.RunID] {
		if existing.ID == job.ID {
			jobCopy := *job
			r.jobs[job.RunID][i] = &jobCopy
			return nil
		}
	}
	return goerr.New("record not found", goerr.V("kind", "job"), goerr.V("id", job.ID))
}

func (r *memoryRepo) GetRun(ctx context.Context, id types.RunID) (*model.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[id]
	if !exists {
		return nil, goerr.New("record not found", goerr.V("kind", "run"), goerr.V("id", id))
	}
	copied := *run
	return &copied, nil
}

func (r *memoryRepo) ListRuns(ctx context.Context) ([]*model.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*model.Run, 0, len(r.runs))
	for _, run := range r.runs {
		copied := *run
		runs = append(runs, &copied)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (r *memoryRepo) ListJobs(ctx context.Context, runID types.RunID) ([]*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*model.Job, 0, len(r.jobs[runID]))
	for _, job := range r.jobs[runID] {
		jobCopy := *job
		jobs = append(jobs, &jobCopy)
	}
	return jobs, nil
}

func (r *memoryRepo) Close() error {
	return nil
}
