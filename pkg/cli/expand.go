package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/loom/pkg/domain/model"
	"github.com/m-mizutani/loom/pkg/matrix"
	"github.com/m-mizutani/loom/pkg/workflow"
	"github.com/urfave/cli/v3"
)

type expandedJob struct {
	Name string        `json:"name"`
	Spec model.JobSpec `json:"spec"`
}

func cmdExpand() *cli.Command {
	var (
		workflowPath string
		asJSON       bool
	)

	return &cli.Command{
		Name:  "expand",
		Usage: "Print the jobs a workflow would expand to, in execution order",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "workflow",
				Aliases:     []string{"f"},
				Usage:       "Path to the workflow definition file",
				Value:       "ci.yml",
				Destination: &workflowPath,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Emit the expanded jobs as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			wf, err := workflow.Load(workflowPath)
			if err != nil {
				return err
			}

			var jobs []expandedJob
			for _, tmpl := range wf.Jobs {
				for _, combo := range matrix.Expand(tmpl.Axes) {
					spec := model.NewJobSpec(combo)
					jobs = append(jobs, expandedJob{
						Name: model.JobName(tmpl.Name, spec),
						Spec: spec,
					})
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(jobs); err != nil {
					return goerr.Wrap(err, "failed to encode expanded jobs")
				}
				return nil
			}

			bold := color.New(color.Bold)
			faint := color.New(color.Faint)

			bold.Printf("%s: %d jobs\n", wf.Name, len(jobs))
			for _, job := range jobs {
				fmt.Printf("  %s\n", job.Name)
				if job.Spec.Distro != "" {
					faint.Printf("    runs-on: %s\n", job.Spec.Distro)
				}
				if job.Spec.Toolchain != "" {
					faint.Printf("    toolchain: %s\n", job.Spec.Toolchain)
				}
				if job.Spec.ExtraFlag != "" {
					faint.Printf("    flag: %s\n", job.Spec.ExtraFlag)
				}
			}
			return nil
		},
	}
}
