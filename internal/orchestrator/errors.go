package orchestrator

import (
	"errors"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/study"
)

// Exit codes for failures that did not come from the solver.
const (
	ExitFailure    = 1 // configuration, usage or internal error
	ExitNotStarted = 2 // the study or request was rejected before spawning
)

// ExitCode maps a Run error to the process exit status. A failed solver's own
// exit code is passed through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var execErr *benders.ExecutionError
	if errors.As(err, &execErr) {
		if execErr.ExitCode > 0 && execErr.ExitCode < 256 {
			return execErr.ExitCode
		}
		return ExitFailure
	}

	for _, target := range []error{
		benders.ErrOutputPath,
		benders.ErrLpPath,
		benders.ErrSolver,
		study.ErrNoOutputDir,
		study.ErrNoSimulation,
		ErrPreflight,
	} {
		if errors.Is(err, target) {
			return ExitNotStarted
		}
	}
	return ExitFailure
}

// Hint returns a suggestion for fixing err, or "" when there is none.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, study.ErrNoOutputDir), errors.Is(err, study.ErrNoSimulation):
		return "run the antares simulation first, or check -i"
	case errors.Is(err, benders.ErrOutputPath):
		return "check -i and -simulationName: the simulation output directory must exist"
	case errors.Is(err, benders.ErrLpPath):
		return "run the lp_namer step first: the simulation output needs an lp directory"
	case errors.Is(err, benders.ErrInvalidMpiProcessCount):
		return "use -n with a value of at least 1"
	case errors.Is(err, benders.ErrUnsupportedSolverMethod):
		return `use -m "mpibenders", "sequential" or "mergeMPS"`
	case errors.Is(err, benders.ErrExecution):
		return "the solver failed; its logs and problem files were left in the lp directory"
	case errors.Is(err, benders.ErrUnsupportedPlatform):
		return "MPI launching is supported on Linux and Windows only"
	case errors.Is(err, ErrPreflight):
		return "fix the failed checks above or pass --skip-preflight"
	default:
		return ""
	}
}
