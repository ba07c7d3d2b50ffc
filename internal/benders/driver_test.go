package benders

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/platform"
)

// =============================================================================
// Fake Runner for testing
// =============================================================================

// fakeRunner records commands instead of starting processes.
type fakeRunner struct {
	calls    []Command
	exitCode int
	runFn    func(cmd Command) error
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command) error {
	f.calls = append(f.calls, cmd)
	if f.runFn != nil {
		return f.runFn(cmd)
	}
	if f.exitCode != 0 {
		return &ExecutionError{ExitCode: f.exitCode, Command: cmd}
	}
	return nil
}

// newSimulation creates <tmp>/lp and returns the output root and lp dir.
func newSimulation(t *testing.T) (string, string) {
	t.Helper()
	out := t.TempDir()
	lp := filepath.Join(out, "lp")
	if err := os.Mkdir(lp, 0o755); err != nil {
		t.Fatalf("mkdir lp: %v", err)
	}
	return out, lp
}

func createEmptyFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newTestDriver(t *testing.T, paths ExecutablePaths, runner Runner) *Driver {
	t.Helper()
	d, err := New(paths, WithPlatform("linux"), WithRunner(runner))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

var dummyExe = filepath.Join("Dummy", "Path", "to", "something")

// =============================================================================
// Path handling
// =============================================================================

func TestDriver_LpPath(t *testing.T) {
	out, lp := newSimulation(t)
	d := newTestDriver(t, ExecutablePaths{}, &fakeRunner{})

	d.SetSimulationOutputPath(out)
	if got := d.LpPath(); got != lp {
		t.Errorf("LpPath() = %q, want %q", got, lp)
	}
	if got := d.LpPath(); got != lp {
		t.Errorf("second LpPath() = %q, want %q", got, lp)
	}
}

func TestLaunch_NonExistingOutputPath(t *testing.T) {
	for _, method := range []string{"test", "sequential", "mpibenders", "mergeMPS", ""} {
		t.Run(method, func(t *testing.T) {
			runner := &fakeRunner{}
			d := newTestDriver(t, ExecutablePaths{}, runner)

			_, err := d.Launch(context.Background(),
				filepath.Join(t.TempDir(), "i_dont_exist"), method,
				LaunchOptions{NMpi: 13})
			if !errors.Is(err, ErrOutputPath) {
				t.Fatalf("error = %v, want ErrOutputPath", err)
			}
			if len(runner.calls) != 0 {
				t.Error("no process should be spawned")
			}
			if d.State() != StateFailed {
				t.Errorf("State() = %v, want failed", d.State())
			}
		})
	}
}

func TestLaunch_MissingLpPath(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDriver(t, ExecutablePaths{}, runner)

	_, err := d.Launch(context.Background(), t.TempDir(), "", LaunchOptions{})
	if !errors.Is(err, ErrLpPath) {
		t.Fatalf("error = %v, want ErrLpPath", err)
	}
	if len(runner.calls) != 0 {
		t.Error("no process should be spawned")
	}
}

func TestLaunch_LpPathIsFile(t *testing.T) {
	out := t.TempDir()
	createEmptyFile(t, out, "lp")
	d := newTestDriver(t, ExecutablePaths{}, &fakeRunner{})

	_, err := d.Launch(context.Background(), out, "sequential", LaunchOptions{})
	if !errors.Is(err, ErrLpPath) {
		t.Fatalf("error = %v, want ErrLpPath", err)
	}
}

// =============================================================================
// Method selection and command construction
// =============================================================================

func TestLaunch_IllegalMethod(t *testing.T) {
	out, _ := newSimulation(t)
	for _, method := range []string{"test", "", "MPIBENDERS", "mergemps"} {
		t.Run(method, func(t *testing.T) {
			runner := &fakeRunner{}
			d := newTestDriver(t, ExecutablePaths{}, runner)

			_, err := d.Launch(context.Background(), out, method, LaunchOptions{})
			if !errors.Is(err, ErrSolver) {
				t.Fatalf("error = %v, want ErrSolver", err)
			}
			if !errors.Is(err, ErrUnsupportedSolverMethod) {
				t.Errorf("error = %v, want ErrUnsupportedSolverMethod cause", err)
			}
			if len(runner.calls) != 0 {
				t.Error("no process should be spawned")
			}
		})
	}
}

func TestLaunch_InvalidMpiProcessCount(t *testing.T) {
	out, _ := newSimulation(t)
	for _, n := range []int{0, -1} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			runner := &fakeRunner{}
			d := newTestDriver(t, ExecutablePaths{MPIBenders: dummyExe}, runner)

			_, err := d.Launch(context.Background(), out, "mpibenders", LaunchOptions{NMpi: n})
			if !errors.Is(err, ErrSolver) || !errors.Is(err, ErrInvalidMpiProcessCount) {
				t.Fatalf("error = %v, want ErrSolver wrapping ErrInvalidMpiProcessCount", err)
			}
			if len(runner.calls) != 0 {
				t.Error("no process should be spawned")
			}
		})
	}
}

func TestLaunch_Commands(t *testing.T) {
	testCases := []struct {
		name     string
		goos     string
		paths    ExecutablePaths
		method   string
		nMpi     int
		expected []string
	}{
		{
			name:     "mpibenders_linux",
			goos:     "linux",
			paths:    ExecutablePaths{MPIBenders: dummyExe},
			method:   "mpibenders",
			nMpi:     13,
			expected: []string{"mpirun", "-np", "13", dummyExe, "options.txt"},
		},
		{
			name:     "mpibenders_windows",
			goos:     "windows",
			paths:    ExecutablePaths{MPIBenders: dummyExe},
			method:   "mpibenders",
			nMpi:     2,
			expected: []string{"mpiexec", "-n", "2", dummyExe, "options.txt"},
		},
		{
			name:     "sequential",
			goos:     "linux",
			paths:    ExecutablePaths{Sequential: dummyExe},
			method:   "sequential",
			expected: []string{dummyExe, "options.txt"},
		},
		{
			name:     "sequential_ignores_nmpi",
			goos:     "linux",
			paths:    ExecutablePaths{Sequential: dummyExe},
			method:   "sequential",
			nMpi:     8,
			expected: []string{dummyExe, "options.txt"},
		},
		{
			name:     "merge_mps",
			goos:     "linux",
			paths:    ExecutablePaths{MergeMPS: dummyExe},
			method:   "mergeMPS",
			expected: []string{dummyExe, "options.txt"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, lp := newSimulation(t)
			runner := &fakeRunner{}
			d, err := New(tc.paths, WithPlatform(tc.goos), WithRunner(runner))
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			res, err := d.Launch(context.Background(), out, tc.method,
				LaunchOptions{KeepMps: true, NMpi: tc.nMpi})
			if err != nil {
				t.Fatalf("Launch: %v", err)
			}

			if len(runner.calls) != 1 {
				t.Fatalf("runner called %d times, want 1", len(runner.calls))
			}
			got := runner.calls[0]
			if !reflect.DeepEqual(got.Args, tc.expected) {
				t.Errorf("Args = %q, want %q", got.Args, tc.expected)
			}
			if got.Dir != lp {
				t.Errorf("Dir = %q, want %q", got.Dir, lp)
			}
			if !reflect.DeepEqual(res.Command, got) {
				t.Errorf("Result.Command = %+v, want %+v", res.Command, got)
			}
			if d.State() != StateCleaned {
				t.Errorf("State() = %v, want cleaned", d.State())
			}
		})
	}
}

func TestDriver_CommandDoesNotRun(t *testing.T) {
	out, lp := newSimulation(t)
	runner := &fakeRunner{}
	d := newTestDriver(t, ExecutablePaths{Sequential: dummyExe}, runner)

	cmd, err := d.Command(out, "sequential", LaunchOptions{})
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if cmd.Dir != lp || cmd.Program() != dummyExe {
		t.Errorf("Command = %+v", cmd)
	}
	if len(runner.calls) != 0 {
		t.Error("Command must not run the solver")
	}
}

// =============================================================================
// Execution failures and cleanup
// =============================================================================

func TestLaunch_ExecutionErrorSkipsCleanup(t *testing.T) {
	out, lp := newSimulation(t)
	logFile := createEmptyFile(t, lp, "somethingLog")
	mpsFile := createEmptyFile(t, lp, "master.mps")
	lpFile := createEmptyFile(t, lp, "master.lp")

	runner := &fakeRunner{exitCode: 3}
	d := newTestDriver(t, ExecutablePaths{MPIBenders: dummyExe}, runner)

	_, err := d.Launch(context.Background(), out, "mpibenders", LaunchOptions{NMpi: 13})
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("error = %v, want ErrExecution", err)
	}
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("error %T is not *ExecutionError", err)
	}
	if execErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", execErr.ExitCode)
	}
	if execErr.Command.Program() != "mpirun" {
		t.Errorf("Command.Program() = %q, want mpirun", execErr.Command.Program())
	}

	for _, f := range []string{logFile, mpsFile, lpFile} {
		if !fileExists(f) {
			t.Errorf("%s should be preserved after a failed run", filepath.Base(f))
		}
	}
	if d.State() != StateFailed {
		t.Errorf("State() = %v, want failed", d.State())
	}
}

func TestLaunch_CleansSolverLogFiles(t *testing.T) {
	out, lp := newSimulation(t)
	log1 := createEmptyFile(t, lp, "somethingLog")
	log2 := createEmptyFile(t, lp, "something.log")
	other := createEmptyFile(t, lp, "otherLog")

	d := newTestDriver(t, ExecutablePaths{MPIBenders: dummyExe}, &fakeRunner{})
	res, err := d.Launch(context.Background(), out, "mpibenders", LaunchOptions{KeepMps: true, NMpi: 13})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if fileExists(log1) || fileExists(log2) {
		t.Error("solver log files should be removed")
	}
	if !fileExists(other) {
		t.Error("unrelated log file should be kept")
	}
	if res.Cleanup.Count(KindLog) != 2 {
		t.Errorf("Cleanup.Count(log) = %d, want 2", res.Cleanup.Count(KindLog))
	}
}

func TestLaunch_MpsFilesByKeepMps(t *testing.T) {
	for _, keep := range []bool{false, true} {
		t.Run(strconv.FormatBool(keep), func(t *testing.T) {
			out, lp := newSimulation(t)
			var files []string
			for _, name := range []string{"master.mps", "1.mps", "2.mps", "master.lp", "1.lp", "2.lp"} {
				files = append(files, createEmptyFile(t, lp, name))
			}
			options := createEmptyFile(t, lp, "options.txt")

			d := newTestDriver(t, ExecutablePaths{MPIBenders: dummyExe}, &fakeRunner{})
			res, err := d.Launch(context.Background(), out, "mpibenders", LaunchOptions{KeepMps: keep, NMpi: 4})
			if err != nil {
				t.Fatalf("Launch: %v", err)
			}

			for _, f := range files {
				if fileExists(f) != keep {
					t.Errorf("%s exists=%v, want %v", filepath.Base(f), fileExists(f), keep)
				}
			}
			if !fileExists(options) {
				t.Error("options.txt must never be removed")
			}
			wantRemoved := 0
			if !keep {
				wantRemoved = 6
			}
			if got := res.Cleanup.Count(KindMPS) + res.Cleanup.Count(KindLP); got != wantRemoved {
				t.Errorf("removed %d problem files, want %d", got, wantRemoved)
			}
		})
	}
}

// =============================================================================
// Construction and callbacks
// =============================================================================

func TestNew_UnsupportedPlatform(t *testing.T) {
	_, err := New(ExecutablePaths{}, WithPlatform("exotic_platform"))
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("error = %v, want ErrUnsupportedPlatform", err)
	}
	if !errors.Is(err, platform.ErrUnsupportedPlatform) {
		t.Error("ErrUnsupportedPlatform should be the platform sentinel")
	}
}

func TestLaunch_StateTransitions(t *testing.T) {
	out, _ := newSimulation(t)
	var transitions []State
	var cleaned bool

	d, err := New(ExecutablePaths{Sequential: dummyExe},
		WithPlatform("linux"),
		WithRunner(&fakeRunner{}),
		WithCallbacks(Callbacks{
			OnStateChange: func(_, newState State) { transitions = append(transitions, newState) },
			OnCleaned:     func(CleanReport) { cleaned = true },
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := d.Launch(context.Background(), out, "sequential", LaunchOptions{}); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	expected := []State{StatePathValidated, StateMethodResolved, StateCommandBuilt, StateRunning, StateCleaned}
	if !reflect.DeepEqual(transitions, expected) {
		t.Errorf("transitions = %v, want %v", transitions, expected)
	}
	if !cleaned {
		t.Error("OnCleaned should be called after a successful run")
	}
}

func TestState_String(t *testing.T) {
	testCases := []struct {
		state    State
		expected string
	}{
		{StateIdle, "idle"},
		{StatePathValidated, "path_validated"},
		{StateMethodResolved, "method_resolved"},
		{StateCommandBuilt, "command_built"},
		{StateRunning, "running"},
		{StateCleaned, "cleaned"},
		{StateFailed, "failed"},
		{State(99), "unknown"},
	}
	for _, tc := range testCases {
		if got := tc.state.String(); got != tc.expected {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.expected)
		}
	}
	if !StateCleaned.IsTerminal() || !StateFailed.IsTerminal() || StateRunning.IsTerminal() {
		t.Error("IsTerminal() mismatch")
	}
}
