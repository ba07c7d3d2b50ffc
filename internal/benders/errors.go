package benders

import (
	"errors"
	"fmt"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/platform"
)

// Error kinds returned by Driver.Launch. Each launch failure matches exactly
// one of them with errors.Is.
var (
	// ErrOutputPath: the simulation output directory does not exist.
	ErrOutputPath = errors.New("benders output path error")

	// ErrLpPath: <output>/lp is missing or not a directory.
	ErrLpPath = errors.New("benders lp path error")

	// ErrSolver: the method or its parameters cannot be turned into a command.
	ErrSolver = errors.New("benders solver error")

	// ErrExecution: the solver process ran and failed.
	ErrExecution = errors.New("benders execution error")

	// ErrUnsupportedPlatform is returned by New when no MPI launcher is known.
	ErrUnsupportedPlatform = platform.ErrUnsupportedPlatform
)

// Causes wrapped by ErrSolver.
var (
	ErrInvalidMpiProcessCount  = errors.New("invalid MPI process count")
	ErrUnsupportedSolverMethod = errors.New("unsupported solver method")
)

// ExecutionError reports a solver process that exited with a non-zero code
// or could not be started.
type ExecutionError struct {
	ExitCode int
	Command  Command
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %q exited with code %d", ErrExecution, e.Command.String(), e.ExitCode)
}

// Is makes errors.Is(err, ErrExecution) hold for every ExecutionError.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Outcome classifies a Launch error into a short label for metrics and
// summaries. A nil error is "success".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrOutputPath):
		return "output_path_error"
	case errors.Is(err, ErrLpPath):
		return "lp_path_error"
	case errors.Is(err, ErrSolver):
		return "solver_error"
	case errors.Is(err, ErrExecution):
		return "execution_error"
	case errors.Is(err, ErrUnsupportedPlatform):
		return "platform_error"
	default:
		return "error"
	}
}

// ExitCode returns the solver exit code carried by err: 0 for nil, the
// process exit code for an *ExecutionError and -1 when nothing was run.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.ExitCode
	}
	return -1
}
