package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/loom/pkg/matrix"
	"github.com/m-mizutani/loom/pkg/workflow"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var workflowPath string

	return &cli.Command{
		Name:  "validate",
		Usage: "Check a workflow definition file for errors",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "workflow",
				Aliases:     []string{"f"},
				Usage:       "Path to the workflow definition file",
				Value:       "ci.yml",
				Destination: &workflowPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			wf, err := workflow.Load(workflowPath)
			if err != nil {
				return err
			}

			total := 0
			for _, tmpl := range wf.Jobs {
				total += matrix.Size(tmpl.Axes)
			}

			color.New(color.FgGreen).Printf("%s: OK\n", workflowPath)
			fmt.Printf("  workflow: %s\n", wf.Name)
			fmt.Printf("  triggers: %v\n", wf.Triggers)
			fmt.Printf("  jobs: %d templates, %d expanded\n", len(wf.Jobs), total)
			return nil
		},
	}
}
