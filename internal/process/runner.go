// Package process runs external programs to completion.
package process

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"syscall"
	"time"
)

// Spec describes one process invocation.
type Spec struct {
	// Args is the full argument vector; Args[0] is the program.
	Args []string

	// Dir is the working directory of the child. The parent's working
	// directory is never changed.
	Dir string

	// Stdout and Stderr receive the child's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// StopTimeout is how long the child gets to exit after SIGTERM when ctx
	// is cancelled before it is killed. Zero means DefaultStopTimeout.
	StopTimeout time.Duration
}

// DefaultStopTimeout is the grace period between SIGTERM and SIGKILL.
const DefaultStopTimeout = 10 * time.Second

// Result captures the outcome of a process execution.
type Result struct {
	ExitCode  int
	PID       int
	StartTime time.Time
	EndTime   time.Time
	Err       error // start or wait error, nil on exit code 0
}

// Duration returns how long the process ran.
func (r Result) Duration() time.Duration {
	if r.StartTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// Run starts the process described by spec and waits for it to exit.
func Run(ctx context.Context, spec Spec) Result {
	if len(spec.Args) == 0 {
		return Result{ExitCode: 1, Err: errors.New("empty command")}
	}

	cmd := exec.CommandContext(ctx, spec.Args[0], spec.Args[1:]...)
	cmd.Dir = spec.Dir
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr

	// Graceful stop on cancellation: SIGTERM, then kill after the timeout.
	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = spec.StopTimeout
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultStopTimeout
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		now := time.Now()
		return Result{ExitCode: ExtractExitCode(err), StartTime: start, EndTime: now, Err: err}
	}

	pid := cmd.Process.Pid
	waitErr := cmd.Wait()

	return Result{
		ExitCode:  ExtractExitCode(waitErr),
		PID:       pid,
		StartTime: start,
		EndTime:   time.Now(),
		Err:       waitErr,
	}
}

// ExtractExitCode extracts the exit code from a Start() or Wait() error.
// A process killed by a signal reports 128 + signal number.
func ExtractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
		return exitErr.ExitCode()
	}

	// Unknown error (e.g. executable not found), assume exit code 1
	return 1
}
