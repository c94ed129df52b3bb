package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// Environment variables set on every dispatched command.
const (
	EnvTick       = "SCRIPTRUNNER_TICK"
	EnvDispatchID = "SCRIPTRUNNER_DISPATCH_ID"
)

// killGrace bounds how long a cancelled command may hold its output pipes.
const killGrace = time.Second

// Command is one rendered action ready to run.
type Command struct {
	// ID uniquely identifies this dispatch attempt.
	ID string

	// Tick is the loop tick that triggered the dispatch.
	Tick uint64

	// Text is the shell command line.
	Text string
}

// Result describes a finished command.
type Result struct {
	ExitCode int
	Output   []byte
	Duration time.Duration
}

// Dispatcher executes commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) (Result, error)
}

// Error reports a command that could not be started or exited non-zero.
type Error struct {
	Command  string
	ExitCode int // -1 when the process never ran to completion
	Output   string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("command %q: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Shell runs commands through bash.
type Shell struct {
	shell  string
	dir    string
	logger *slog.Logger
}

// ShellOption configures a Shell.
type ShellOption func(*Shell)

// WithShell overrides the interpreter (default "bash").
func WithShell(path string) ShellOption {
	return func(s *Shell) {
		s.shell = path
	}
}

// WithDir overrides the working directory. By default the user's home
// directory is resolved on every dispatch.
func WithDir(dir string) ShellOption {
	return func(s *Shell) {
		s.dir = dir
	}
}

// WithLogger sets the logger used for command output.
func WithLogger(logger *slog.Logger) ShellOption {
	return func(s *Shell) {
		s.logger = logger
	}
}

// NewShell creates a Shell dispatcher.
func NewShell(opts ...ShellOption) *Shell {
	s := &Shell{
		shell:  "bash",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch runs cmd.Text with "<shell> -c" and waits for it to finish.
// Cancelling ctx kills the child.
func (s *Shell) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	dir := s.dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Result{ExitCode: -1}, &Error{Command: cmd.Text, ExitCode: -1, Err: err}
		}
		dir = home
	}

	c := exec.CommandContext(ctx, s.shell, "-c", cmd.Text)
	c.Dir = dir
	c.WaitDelay = killGrace
	c.Env = append(c.Environ(),
		EnvTick+"="+strconv.FormatUint(cmd.Tick, 10),
		EnvDispatchID+"="+cmd.ID,
	)

	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out

	start := time.Now()
	err := c.Run()
	res := Result{
		ExitCode: c.ProcessState.ExitCode(),
		Output:   out.Bytes(),
		Duration: time.Since(start),
	}

	s.logger.Debug("command finished",
		"id", cmd.ID,
		"command", cmd.Text,
		"exit_code", res.ExitCode,
		"output", out.String(),
		"duration", res.Duration,
	)

	if err != nil {
		derr := &Error{Command: cmd.Text, ExitCode: res.ExitCode, Output: out.String(), Err: err}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			derr.ExitCode = -1
			res.ExitCode = -1
		}
		return res, derr
	}
	return res, nil
}
