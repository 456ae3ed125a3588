// pkg/inspect/runner.go - subprocess execution for the inspector tool.

package inspect

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// execCommand is abstracted for testing
var execCommand = exec.CommandContext

// Result is the captured outcome of one tool invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes an external tool and captures its output.
type Runner interface {
	Run(ctx context.Context, tool string, args ...string) (Result, error)
}

// ExecRunner runs tools as child processes. A non-zero exit status is
// reported in Result, not as an error.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, tool string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := execCommand(ctx, tool, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
