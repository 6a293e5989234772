package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/loom/pkg/domain/interfaces"
	"github.com/m-mizutani/loom/pkg/domain/model"
	"github.com/m-mizutani/loom/pkg/domain/types"
	"github.com/m-mizutani/loom/pkg/matrix"
	"github.com/m-mizutani/loom/pkg/workflow"
)

// DefaultStepTimeout bounds each job step unless configured otherwise.
const DefaultStepTimeout = 10 * time.Minute

// Runner expands trigger events into runs and executes every expanded job.
type Runner struct {
	workflow   *model.Workflow
	repo       interfaces.Repository
	executor   interfaces.StepExecutor
	github     interfaces.GitHubClient
	toolchains *workflow.ToolchainRegistry

	stepTimeout   time.Duration
	sourceDir     string
	statusContext string
}

// RunnerOption is a functional option for Runner configuration
type RunnerOption func(*Runner)

// WithGitHub sets the GitHub client used for checkout and commit status
// reporting. Without it, jobs run against a local source directory and no
// statuses are reported.
func WithGitHub(client interfaces.GitHubClient) RunnerOption {
	return func(r *Runner) {
		r.github = client
	}
}

// WithToolchains overrides the toolchain registry
func WithToolchains(registry *workflow.ToolchainRegistry) RunnerOption {
	return func(r *Runner) {
		r.toolchains = registry
	}
}

// WithStepTimeout sets the per-step timeout
func WithStepTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.stepTimeout = d
	}
}

// WithSourceDir sets the local source tree used when no GitHub client is
// configured
func WithSourceDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.sourceDir = dir
	}
}

// NewRunner creates a new Runner for a loaded workflow
func NewRunner(wf *model.Workflow, repo interfaces.Repository, executor interfaces.StepExecutor, opts ...RunnerOption) *Runner {
	r := &Runner{
		workflow:      wf,
		repo:          repo,
		executor:      executor,
		toolchains:    workflow.DefaultToolchains(),
		stepTimeout:   DefaultStepTimeout,
		sourceDir:     ".",
		statusContext: "loom",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// jobExecution pairs a persisted job with its resolved test invocation.
type jobExecution struct {
	job         *model.Job
	testCommand string
}

// ProcessEvent matches an event against the workflow triggers and, on a
// match, expands the matrix into a run and executes it to completion.
// Events the workflow does not subscribe to are ignored with a nil run.
func (uc *Runner) ProcessEvent(ctx context.Context, event *model.TriggerEvent) (*model.Run, error) {
	logger := ctxlog.From(ctx)

	logger.Info("Processing trigger event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"sender", event.Sender,
	)

	if !event.IsSupportedEvent() {
		logger.Warn("Unsupported event received",
			"type", event.Type,
			"action", event.Action,
		)
		return nil, nil
	}

	if !uc.workflow.Triggered(event.Type) {
		logger.Info("Workflow is not subscribed to event type",
			"workflow", uc.workflow.Name,
			"type", event.Type,
		)
		return nil, nil
	}

	run, executions := uc.expand(event)

	jobs := make([]*model.Job, len(executions))
	for i, ex := range executions {
		jobs[i] = ex.job
	}

	if err := uc.repo.CreateRun(ctx, run, jobs); err != nil {
		return nil, goerr.Wrap(err, "failed to record run", goerr.V("run_id", run.ID))
	}

	logger.Info("Run created",
		"run_id", run.ID,
		"workflow", run.Workflow,
		"jobs", len(jobs),
	)

	if err := uc.executeRun(ctx, run, executions); err != nil {
		return run, err
	}
	return run, nil
}

// expand produces the run and its full job set. The job set is exactly the
// Cartesian product of each template's axes, in template declaration order;
// it is fixed here, at trigger time, and never grows afterwards.
func (uc *Runner) expand(event *model.TriggerEvent) (*model.Run, []jobExecution) {
	now := time.Now().UTC()
	run := &model.Run{
		ID:         types.RunID(uuid.NewString()),
		Workflow:   uc.workflow.Name,
		Event:      event.Type,
		Repository: event.Repository,
		CommitSHA:  event.CommitSHA,
		Ref:        event.Ref,
		Status:     model.RunStatusQueued,
		CreatedAt:  now,
	}

	var executions []jobExecution
	for _, template := range uc.workflow.Jobs {
		for _, combo := range matrix.Expand(template.Axes) {
			spec := model.NewJobSpec(combo)

			testCommand := template.Run
			if spec.ExtraFlag != "" {
				testCommand += " " + spec.ExtraFlag
			}

			executions = append(executions, jobExecution{
				job: &model.Job{
					ID:        types.JobID(uuid.NewString()),
					RunID:     run.ID,
					Name:      model.JobName(template.Name, spec),
					Spec:      spec,
					Status:    model.JobStatusQueued,
					CreatedAt: now,
				},
				testCommand: testCommand,
			})
		}
	}

	return run, executions
}

// executeRun runs all jobs concurrently. Jobs are mutually independent: a
// failing job neither cancels nor delays its siblings, and each failure is
// recorded on that job alone.
func (uc *Runner) executeRun(ctx context.Context, run *model.Run, executions []jobExecution) error {
	logger := ctxlog.From(ctx)

	now := time.Now().UTC()
	run.Status = model.RunStatusRunning
	run.StartedAt = &now
	if err := uc.repo.UpdateRun(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to mark run as running", goerr.V("run_id", run.ID))
	}

	var wg sync.WaitGroup
	for _, ex := range executions {
		wg.Add(1)
		go func(ex jobExecution) {
			defer wg.Done()
			uc.executeJob(ctx, run, ex)
		}(ex)
	}
	wg.Wait()

	jobs := make([]*model.Job, len(executions))
	for i, ex := range executions {
		jobs[i] = ex.job
	}

	finished := time.Now().UTC()
	run.Status = model.AggregateStatus(jobs)
	run.FinishedAt = &finished
	if err := uc.repo.UpdateRun(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to finalize run", goerr.V("run_id", run.ID))
	}

	logger.Info("Run finished",
		"run_id", run.ID,
		"status", run.Status,
		"jobs", len(jobs),
	)
	return nil
}

// executeJob performs the fixed step sequence of one job: checkout,
// toolchain provisioning, then the test invocation. Any step failure fails
// this job only.
func (uc *Runner) executeJob(ctx context.Context, run *model.Run, ex jobExecution) {
	logger := ctxlog.From(ctx)
	job := ex.job

	started := time.Now().UTC()
	job.Status = model.JobStatusRunning
	job.StartedAt = &started
	if err := uc.repo.UpdateJob(ctx, job); err != nil {
		logger.Error("Failed to mark job as running", "error", err, "job_id", job.ID)
	}
	uc.reportStatus(ctx, run, job, "pending", "job started")

	err := uc.runSteps(ctx, run, ex)

	finished := time.Now().UTC()
	job.FinishedAt = &finished
	if err != nil {
		job.Status = model.JobStatusFailed
		job.Error = err.Error()
		logger.Error("Job failed", "error", err, "job_id", job.ID, "job", job.Name)
		uc.reportStatus(ctx, run, job, "failure", "job failed")
	} else {
		job.Status = model.JobStatusSucceeded
		logger.Info("Job succeeded", "job_id", job.ID, "job", job.Name)
		uc.reportStatus(ctx, run, job, "success", "job succeeded")
	}

	if updateErr := uc.repo.UpdateJob(ctx, job); updateErr != nil {
		logger.Error("Failed to record job result", "error", updateErr, "job_id", job.ID)
	}
}

func (uc *Runner) runSteps(ctx context.Context, run *model.Run, ex jobExecution) error {
	logger := ctxlog.From(ctx)
	job := ex.job

	workdir, cleanup, err := uc.checkout(ctx, run)
	if err != nil {
		return goerr.Wrap(err, "checkout failed", goerr.V("job", job.Name))
	}
	defer cleanup()

	var env []string
	if job.Spec.Toolchain != "" {
		env = append(env, "RUSTUP_TOOLCHAIN="+job.Spec.Toolchain)

		install := uc.toolchains.InstallCommand(job.Spec.Toolchain)
		if err := uc.runStep(ctx, workdir, env, install); err != nil {
			return goerr.Wrap(err, "toolchain install failed",
				goerr.V("job", job.Name), goerr.V("toolchain", job.Spec.Toolchain))
		}
	}

	logger.Debug("Running test command",
		"job", job.Name,
		"command", ex.testCommand,
		"workdir", workdir,
	)
	if err := uc.runStep(ctx, workdir, env, ex.testCommand); err != nil {
		return goerr.Wrap(err, "test invocation failed", goerr.V("job", job.Name))
	}
	return nil
}

func (uc *Runner) runStep(ctx context.Context, dir string, env []string, command string) error {
	stepCtx, cancel := context.WithTimeout(ctx, uc.stepTimeout)
	defer cancel()

	output, err := uc.executor.Run(stepCtx, dir, env, command)
	if err != nil {
		return goerr.Wrap(err, "step failed", goerr.V("output", tail(output, 4096)))
	}
	return nil
}

// checkout materializes the source tree for one job. With a GitHub client
// the commit zipball is extracted into a fresh temporary workspace; without
// one the configured local source directory is used as-is.
func (uc *Runner) checkout(ctx context.Context, run *model.Run) (string, func(), error) {
	if uc.github == nil {
		return uc.sourceDir, func() {}, nil
	}

	logger := ctxlog.From(ctx)

	owner, repo, ok := strings.Cut(run.Repository, "/")
	if !ok {
		return "", nil, goerr.New("invalid repository name", goerr.V("repository", run.Repository))
	}

	data, err := uc.github.DownloadZipball(ctx, owner, repo, run.CommitSHA)
	if err != nil {
		return "", nil, err
	}

	result, err := extractZipball(data)
	if err != nil {
		return "", nil, err
	}

	logger.Debug("Checked out source",
		"dir", result.Dir,
		"file_count", len(result.Files),
		"total_size", result.Size,
	)

	cleanup := func() {
		if removeErr := removeWorkspace(result.Dir); removeErr != nil {
			logger.Warn("Failed to clean up workspace",
				"dir", result.Dir,
				"error", removeErr,
			)
		}
	}
	return workspaceRoot(result), cleanup, nil
}

func (uc *Runner) reportStatus(ctx context.Context, run *model.Run, job *model.Job, state, description string) {
	if uc.github == nil {
		return
	}

	owner, repo, ok := strings.Cut(run.Repository, "/")
	if !ok {
		return
	}

	status := &model.CommitStatus{
		State:       state,
		Context:     uc.statusContext + "/" + job.Name,
		Description: description,
	}
	if err := uc.github.CreateCommitStatus(ctx, owner, repo, run.CommitSHA, status); err != nil {
		ctxlog.From(ctx).Warn("Failed to report commit status",
			"error", err,
			"job", job.Name,
			"state", state,
		)
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
