package config

import (
	"time"

	"github.com/m-mizutani/loom/pkg/usecase"
	"github.com/m-mizutani/loom/pkg/workflow"
	"github.com/urfave/cli/v3"
)

// Runner holds job runner configuration
type Runner struct {
	WorkflowPath   string
	ToolchainsPath string
	StepTimeout    time.Duration
}

// Flags returns CLI flags for runner configuration
func (c *Runner) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "workflow",
			Aliases:     []string{"f"},
			Usage:       "Path to workflow definition file",
			Value:       "ci.yml",
			Destination: &c.WorkflowPath,
			Sources:     cli.EnvVars("LOOM_WORKFLOW"),
		},
		&cli.StringFlag{
			Name:        "toolchains",
			Usage:       "Path to TOML toolchain registry (built-in defaults if empty)",
			Destination: &c.ToolchainsPath,
			Sources:     cli.EnvVars("LOOM_TOOLCHAINS"),
		},
		&cli.DurationFlag{
			Name:        "step-timeout",
			Usage:       "Timeout per job step",
			Value:       usecase.DefaultStepTimeout,
			Destination: &c.StepTimeout,
			Sources:     cli.EnvVars("LOOM_STEP_TIMEOUT"),
		},
	}
}

// Toolchains loads the configured toolchain registry
func (c *Runner) Toolchains() (*workflow.ToolchainRegistry, error) {
	if c.ToolchainsPath == "" {
		return workflow.DefaultToolchains(), nil
	}
	return workflow.LoadToolchains(c.ToolchainsPath)
}
