package benders

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/platform"
)

// OptionsFile is the solver options file. It is always passed relative to the
// lp directory because the solvers resolve it against their working directory.
const OptionsFile = "options.txt"

// Command is a ready-to-run solver invocation.
type Command struct {
	Args []string // Args[0] is the program
	Dir  string   // working directory (the lp directory)
}

// String returns the command line as it would be typed in a shell (for logs
// and --print-cmd).
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Program returns the executable that will be started.
func (c Command) Program() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// BuildCommand constructs the command line for method. nMpi is only read for
// MethodMPIBenders and must be at least 1 there.
func BuildCommand(method Method, paths ExecutablePaths, launcher platform.Launcher, lpDir string, nMpi int) (Command, error) {
	var args []string

	switch method {
	case MethodMPIBenders:
		if nMpi < 1 {
			return Command{}, fmt.Errorf("%w: %d (need at least 1)", ErrInvalidMpiProcessCount, nMpi)
		}
		args = []string{
			launcher.Executable,
			launcher.CountFlag, strconv.Itoa(nMpi),
			paths.MPIBenders,
			OptionsFile,
		}

	case MethodSequential:
		args = []string{paths.Sequential, OptionsFile}

	case MethodMergeMPS:
		args = []string{paths.MergeMPS, OptionsFile}

	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnsupportedSolverMethod, string(method))
	}

	return Command{Args: args, Dir: lpDir}, nil
}
