package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/loom/pkg/cli/config"
	"github.com/m-mizutani/loom/pkg/domain/model"
	"github.com/m-mizutani/loom/pkg/infra/exec"
	"github.com/m-mizutani/loom/pkg/usecase"
	"github.com/m-mizutani/loom/pkg/workflow"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var (
		runnerCfg config.Runner
		dbCfg     config.Database
		eventType string
		repoName  string
		commitSHA string
		ref       string
		sourceDir string
	)

	flags := append(runnerCfg.Flags(), dbCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "event",
			Usage:       "Trigger event type (push or pull_request)",
			Value:       "push",
			Destination: &eventType,
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository full name (owner/name)",
			Value:       "local/workspace",
			Destination: &repoName,
		},
		&cli.StringFlag{
			Name:        "commit",
			Usage:       "Commit SHA the run is for",
			Value:       "HEAD",
			Destination: &commitSHA,
		},
		&cli.StringFlag{
			Name:        "ref",
			Usage:       "Git ref that triggered the run",
			Value:       "refs/heads/main",
			Destination: &ref,
		},
		&cli.StringFlag{
			Name:        "source",
			Usage:       "Local source directory to run jobs in",
			Value:       ".",
			Destination: &sourceDir,
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Trigger one workflow run locally and execute all jobs",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			wf, err := workflow.Load(runnerCfg.WorkflowPath)
			if err != nil {
				return err
			}

			repo, err := dbCfg.Configure()
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Warn("Failed to close run store", slog.Any("error", err))
				}
			}()

			toolchains, err := runnerCfg.Toolchains()
			if err != nil {
				return err
			}

			runner := usecase.NewRunner(wf, repo, exec.New(),
				usecase.WithToolchains(toolchains),
				usecase.WithStepTimeout(runnerCfg.StepTimeout),
				usecase.WithSourceDir(sourceDir),
			)

			event := &model.TriggerEvent{
				ID:         "local",
				Type:       model.EventType(eventType),
				Action:     "opened",
				Repository: repoName,
				CommitSHA:  commitSHA,
				Ref:        ref,
				Sender:     "local",
				ReceivedAt: time.Now().UTC(),
			}

			run, err := runner.ProcessEvent(ctx, event)
			if err != nil {
				return err
			}
			if run == nil {
				fmt.Printf("workflow %q is not triggered by %q\n", wf.Name, eventType)
				return nil
			}

			jobs, err := repo.ListJobs(ctx, run.ID)
			if err != nil {
				return err
			}
			printRunSummary(run, jobs)

			if run.Status != model.RunStatusSucceeded {
				return goerr.New("run failed", goerr.V("run_id", run.ID))
			}
			return nil
		},
	}
}

func printRunSummary(run *model.Run, jobs []*model.Job) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	bold.Printf("Run %s (%s)\n", run.ID, run.Workflow)
	for _, job := range jobs {
		var dur time.Duration
		if job.StartedAt != nil && job.FinishedAt != nil {
			dur = job.FinishedAt.Sub(*job.StartedAt).Round(time.Millisecond)
		}

		if job.Status == model.JobStatusSucceeded {
			green.Printf("  ok   %s", job.Name)
		} else {
			red.Printf("  FAIL %s", job.Name)
		}
		fmt.Printf("  (%s)\n", dur)

		if job.Error != "" {
			fmt.Printf("       %s\n", job.Error)
		}
	}
	bold.Printf("Result: %s (%d jobs)\n", run.Status, len(jobs))
}
