package interfaces

import "context"

// StepExecutor runs a single job step as a shell command inside a workspace
type StepExecutor interface {
	// Run executes command in dir with extra environment entries appended to
	// the process environment. It returns the combined output.
	Run(ctx context.Context, dir string, env []string, command string) (string, error)
}
