// Package exec runs job steps as local shell commands.
package exec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"

	"github.com/m-mizutani/goerr/v2"
)

// Executor runs steps on the local host via the system shell.
type Executor struct{}

func New() *Executor {
	return &Executor{}
}

// Run executes a single step command in dir and returns its combined output.
// Cancellation and timeout come from ctx; the command's environment is the
// process environment plus env.
func (x *Executor) Run(ctx context.Context, dir string, env []string, command string) (string, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out.String(), goerr.Wrap(ctxErr, "step timed out or was cancelled",
				goerr.V("command", command))
		}
		return out.String(), goerr.Wrap(err, "step command failed",
			goerr.V("command", command))
	}

	return out.String(), nil
}
