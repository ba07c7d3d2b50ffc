// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/platform"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name     string // Name of the check
	Required int    // Required value (if applicable)
	Actual   int    // Actual value found
	Passed   bool   // Whether the check passed
	Warning  bool   // True if it's a warning (non-fatal)
	Message  string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// Params describes the launch being checked.
type Params struct {
	Method           benders.Method
	Executable       string // solver binary for Method
	Launcher         platform.Launcher
	LpDir            string
	NMpi             int
	AvailableSolvers []string
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}

	if c.Required > 0 {
		return fmt.Sprintf("  %s %s: %d available (need %d)", status, c.Name, c.Actual, c.Required)
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// RunAll executes all preflight checks for p.
func RunAll(p Params) *Result {
	result := &Result{
		Checks: make([]Check, 0, 5),
		Passed: true,
	}

	add := func(c Check) {
		result.Checks = append(result.Checks, c)
		if !c.Passed {
			result.Passed = false
		}
	}

	add(checkExecutable(p.Executable))
	if p.Method == benders.MethodMPIBenders {
		add(checkMPILauncher(p.Launcher))
		add(checkMPIProcesses(p.NMpi, runtime.NumCPU()))
	}
	add(checkOptionsFile(p.LpDir))

	// Informational only
	add(checkSolvers(p.AvailableSolvers))

	return result
}

// checkExecutable verifies the solver binary can be started.
func checkExecutable(path string) Check {
	if path == "" {
		return Check{Name: "solver_executable", Passed: false, Message: "no executable configured"}
	}

	// Bare names go through PATH like exec.Command does.
	if !strings.ContainsRune(path, filepath.Separator) && !strings.ContainsRune(path, '/') {
		found, err := exec.LookPath(path)
		if err != nil {
			return Check{
				Name:    "solver_executable",
				Passed:  false,
				Message: fmt.Sprintf("%s not found in PATH", path),
			}
		}
		return Check{Name: "solver_executable", Passed: true, Message: fmt.Sprintf("found at %s", found)}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Check{
			Name:    "solver_executable",
			Passed:  false,
			Message: fmt.Sprintf("not found at %s", path),
		}
	}
	if info.IsDir() {
		return Check{
			Name:    "solver_executable",
			Passed:  false,
			Message: fmt.Sprintf("%s is a directory", path),
		}
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return Check{
			Name:    "solver_executable",
			Passed:  false,
			Message: fmt.Sprintf("%s is not executable", path),
		}
	}

	return Check{Name: "solver_executable", Passed: true, Message: fmt.Sprintf("found at %s", path)}
}

// checkMPILauncher verifies mpirun/mpiexec is on PATH.
func checkMPILauncher(l platform.Launcher) Check {
	found, err := exec.LookPath(l.Executable)
	if err != nil {
		return Check{
			Name:    "mpi_launcher",
			Passed:  false,
			Message: fmt.Sprintf("%s not found in PATH", l.Executable),
		}
	}
	return Check{
		Name:    "mpi_launcher",
		Passed:  true,
		Message: fmt.Sprintf("%s found at %s", l.Executable, found),
	}
}

// checkMPIProcesses warns when more ranks than CPUs are requested.
func checkMPIProcesses(nMpi, cpus int) Check {
	return Check{
		Name:     "cpus",
		Required: nMpi,
		Actual:   cpus,
		Passed:   true, // oversubscription still runs
		Warning:  nMpi > cpus,
		Message:  fmt.Sprintf("%d MPI processes on %d CPUs", nMpi, cpus),
	}
}

// checkOptionsFile verifies <lp>/options.txt exists.
func checkOptionsFile(lpDir string) Check {
	path := filepath.Join(lpDir, benders.OptionsFile)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Check{
			Name:    "options_file",
			Passed:  false,
			Message: fmt.Sprintf("%s not found", path),
		}
	}
	return Check{Name: "options_file", Passed: true, Message: path}
}

// checkSolvers reports the solvers the installation declares.
func checkSolvers(solvers []string) Check {
	if len(solvers) == 0 {
		return Check{
			Name:    "available_solvers",
			Passed:  true,
			Warning: true,
			Message: "none declared in config.yaml",
		}
	}
	return Check{
		Name:    "available_solvers",
		Passed:  true,
		Message: strings.Join(solvers, ", "),
	}
}

// PrintResults prints the preflight check results to w.
func PrintResults(w io.Writer, result *Result) {
	fmt.Fprintln(w, "Preflight checks:")
	for _, check := range result.Checks {
		fmt.Fprintln(w, check.String())
		if !check.Passed {
			fmt.Fprintf(w, "    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Fprintln(w)
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "solver_executable":
		return "pass -installDir or set BENDERS_* names in config.yaml"
	case "mpi_launcher":
		return "install an MPI runtime (apt install openmpi-bin / MS-MPI on Windows)"
	case "options_file":
		return "re-run the lp_namer step to regenerate the lp directory"
	default:
		return "see documentation"
	}
}
