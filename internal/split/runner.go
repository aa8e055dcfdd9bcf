package split

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// CommandResult is the outcome of one external command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// Failed reports whether the command did not start or exited non-zero.
func (r CommandResult) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// CommandRunner runs an external command in dir.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) CommandResult
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) CommandResult {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.Err = err
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
	}
	return result
}
