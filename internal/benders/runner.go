package benders

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/process"
)

// Runner executes a solver command and waits for it.
// It returns nil on exit code 0 and an *ExecutionError otherwise.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as child processes. The solver's stdout and stderr
// are passed through unparsed.
type ExecRunner struct {
	Stdout io.Writer // default os.Stdout
	Stderr io.Writer // default os.Stderr
	Logger *slog.Logger

	// StopTimeout is the SIGTERM grace period when ctx is cancelled.
	StopTimeout time.Duration
}

// NewExecRunner creates a runner that passes solver output to the terminal.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr, Logger: logger}
}

// Run starts cmd in cmd.Dir and blocks until it exits. No retry is attempted.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	stdout, stderr := r.Stdout, r.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	logger.Info("solver_starting", "cmd", cmd.String(), "dir", cmd.Dir)

	res := process.Run(ctx, process.Spec{
		Args:   cmd.Args,
		Dir:    cmd.Dir,
		Stdout: stdout,
		Stderr: stderr,

		StopTimeout: r.StopTimeout,
	})

	logger.Info("solver_exited",
		"pid", res.PID,
		"exit_code", res.ExitCode,
		"duration", res.Duration().String(),
	)

	if res.Err != nil || res.ExitCode != 0 {
		return &ExecutionError{ExitCode: res.ExitCode, Command: cmd, Err: res.Err}
	}
	return nil
}
