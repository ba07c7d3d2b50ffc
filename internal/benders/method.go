// Package benders launches the Benders decomposition solvers of the
// antares-xpansion suite and cleans up after them.
//
// A Driver validates the simulation output layout, picks the solver binary for
// the requested method, builds its exact command line, runs it from the lp
// directory and removes the solver's logs and intermediate problem files once
// it has exited successfully.
package benders

import (
	"fmt"
	"strings"
)

// Method selects which solver executable is run and how it is invoked.
type Method string

const (
	// MethodMPIBenders runs the MPI-parallel Benders solver under the MPI launcher.
	MethodMPIBenders Method = "mpibenders"

	// MethodSequential runs the single-process Benders solver.
	MethodSequential Method = "sequential"

	// MethodMergeMPS merges all subproblems into one MPS and solves it frontally.
	MethodMergeMPS Method = "mergeMPS"
)

// Methods returns the recognized methods in display order.
func Methods() []Method {
	return []Method{MethodMPIBenders, MethodSequential, MethodMergeMPS}
}

// ParseMethod converts a method name into a Method.
// Names are matched exactly; "mergemps" is not "mergeMPS".
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == s {
			return m, nil
		}
	}
	names := make([]string, 0, len(Methods()))
	for _, m := range Methods() {
		names = append(names, string(m))
	}
	return "", fmt.Errorf("%w: %q (must be one of: %s)",
		ErrUnsupportedSolverMethod, s, strings.Join(names, ", "))
}

// String returns the method name.
func (m Method) String() string {
	return string(m)
}

// ExecutablePaths holds the location of each solver binary.
// Paths may be absolute or relative to the caller's working directory.
type ExecutablePaths struct {
	MPIBenders string
	Sequential string
	MergeMPS   string
}

// For returns the executable used by the given method.
func (p ExecutablePaths) For(m Method) (string, error) {
	switch m {
	case MethodMPIBenders:
		return p.MPIBenders, nil
	case MethodSequential:
		return p.Sequential, nil
	case MethodMergeMPS:
		return p.MergeMPS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSolverMethod, string(m))
	}
}
