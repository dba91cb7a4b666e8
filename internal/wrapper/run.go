package wrapper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/psantana5/ct/internal/logging"
)

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// Command is an external program run as a plain Go call, so it can be handed
// to the timing and usage wrappers.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
	Logger *logging.Logger
}

// Result describes a finished command.
type Result struct {
	PID      int
	ExitCode int
}

// New creates a command forwarding its output to ours.
func New(name string, args ...string) *Command {
	return &Command{
		Name:   name,
		Args:   args,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts the command and waits for it. A non-zero exit is returned as
// *ExitError together with the result.
func (c *Command) Run(ctx context.Context) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", c.Name, err)
	}

	result := &Result{PID: cmd.Process.Pid}
	c.debug("started", map[string]any{"command": c.Name, "pid": result.PID})

	err := cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed waiting for %s: %w", c.Name, err)
		}
		result.ExitCode = exitErr.ExitCode()
		c.debug("exited", map[string]any{"command": c.Name, "pid": result.PID, "exit_code": result.ExitCode})
		return result, &ExitError{Command: c.Name, ExitCode: result.ExitCode}
	}

	c.debug("exited", map[string]any{"command": c.Name, "pid": result.PID, "exit_code": 0})
	return result, nil
}

func (c *Command) debug(msg string, fields map[string]any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, fields)
	}
}
