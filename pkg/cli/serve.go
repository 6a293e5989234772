package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/loom/pkg/cli/config"
	controller "github.com/m-mizutani/loom/pkg/controller/http"
	"github.com/m-mizutani/loom/pkg/infra/exec"
	"github.com/m-mizutani/loom/pkg/usecase"
	"github.com/m-mizutani/loom/pkg/workflow"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
		runnerCfg config.Runner
		dbCfg     config.Database
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, runnerCfg.Flags()...)
	flags = append(flags, dbCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting loom server",
				slog.String("addr", serverCfg.Addr),
				slog.String("workflow", runnerCfg.WorkflowPath),
			)

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

			runnerOpts := []usecase.RunnerOption{
				usecase.WithToolchains(toolchains),
				usecase.WithStepTimeout(runnerCfg.StepTimeout),
			}
			if githubCfg.HasAppCredentials() {
				githubClient, err := githubCfg.NewClient()
				if err != nil {
					return err
				}
				runnerOpts = append(runnerOpts, usecase.WithGitHub(githubClient))
			} else {
				logger.Warn("GitHub App credentials not configured; jobs run without checkout and status reporting")
			}

			// Create use case
			runner := usecase.NewRunner(wf, repo, exec.New(), runnerOpts...)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				runner,
				repo,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
				controller.WithAPITokenSecret(serverCfg.APITokenSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
