package benders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/platform"
)

// LpDirName is the subdirectory of a simulation output holding the problems.
const LpDirName = "lp"

// LaunchOptions tunes a single launch.
type LaunchOptions struct {
	// KeepMps retains the .mps and .lp files after a successful run.
	KeepMps bool

	// NMpi is the MPI process count. Required (>= 1) for mpibenders only.
	NMpi int
}

// Result describes a successful launch.
type Result struct {
	Method   Method
	Command  Command
	Start    time.Time
	Duration time.Duration
	Cleanup  CleanReport
}

// Callbacks contains optional hooks for driver events.
type Callbacks struct {
	// OnStateChange is called on every state transition of a launch.
	OnStateChange func(oldState, newState State)

	// OnCommand is called with the command right before it is run.
	OnCommand func(cmd Command)

	// OnCleaned is called after cleanup with what was removed.
	OnCleaned func(report CleanReport)
}

// Option configures a Driver.
type Option func(*Driver)

// WithPlatform resolves the MPI launcher for goos instead of runtime.GOOS.
func WithPlatform(goos string) Option {
	return func(d *Driver) { d.goos = goos }
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(d *Driver) { d.runner = r }
}

// WithLogger sets the driver's logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithCallbacks registers event hooks.
func WithCallbacks(cb Callbacks) Option {
	return func(d *Driver) { d.callbacks = cb }
}

// Driver launches a Benders solver for a simulation output directory.
type Driver struct {
	paths     ExecutablePaths
	launcher  platform.Launcher
	runner    Runner
	logger    *slog.Logger
	callbacks Callbacks
	goos      string

	mu         sync.Mutex
	outputPath string
	state      State
}

// New creates a driver for the given executables. It fails with
// ErrUnsupportedPlatform if no MPI launcher is known for the platform.
func New(paths ExecutablePaths, opts ...Option) (*Driver, error) {
	d := &Driver{paths: paths}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.runner == nil {
		d.runner = NewExecRunner(d.logger)
	}

	var err error
	if d.goos == "" {
		d.launcher, err = platform.Current()
	} else {
		d.launcher, err = platform.Resolve(d.goos)
	}
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Paths returns the executables the driver was built with.
func (d *Driver) Paths() ExecutablePaths {
	return d.paths
}

// Launcher returns the resolved MPI launcher.
func (d *Driver) Launcher() platform.Launcher {
	return d.launcher
}

// SetSimulationOutputPath records the output root used by LpPath.
func (d *Driver) SetSimulationOutputPath(path string) {
	d.mu.Lock()
	d.outputPath = path
	d.mu.Unlock()
}

// LpPath returns <output>/lp for the recorded simulation output path.
func (d *Driver) LpPath() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return LpPathFor(d.outputPath)
}

// LpPathFor returns the lp directory of a simulation output root.
func LpPathFor(outputPath string) string {
	return filepath.Join(outputPath, LpDirName)
}

// State returns the state of the current or last launch.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Command validates the layout and returns the command Launch would run,
// without running it.
func (d *Driver) Command(outputPath, method string, opts LaunchOptions) (Command, error) {
	lpDir, err := validatePaths(outputPath)
	if err != nil {
		return Command{}, err
	}
	m, err := ParseMethod(method)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrSolver, err)
	}
	cmd, err := BuildCommand(m, d.paths, d.launcher, lpDir, opts.NMpi)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrSolver, err)
	}
	return cmd, nil
}

// Launch runs the solver selected by method on the simulation in outputPath.
//
// The output directory and its lp subdirectory must exist; nothing is spawned
// otherwise. On a non-zero exit the returned error is an *ExecutionError and
// the lp directory is left untouched for diagnosis. On success the solver
// logs are removed, and the .mps/.lp files too unless opts.KeepMps is set.
func (d *Driver) Launch(ctx context.Context, outputPath, method string, opts LaunchOptions) (*Result, error) {
	d.setState(StateIdle)
	d.SetSimulationOutputPath(outputPath)

	lpDir, err := validatePaths(outputPath)
	if err != nil {
		return nil, d.fail(err)
	}
	d.setState(StatePathValidated)

	m, err := ParseMethod(method)
	if err != nil {
		return nil, d.fail(fmt.Errorf("%w: %w", ErrSolver, err))
	}
	executable, err := d.paths.For(m)
	if err != nil {
		return nil, d.fail(fmt.Errorf("%w: %w", ErrSolver, err))
	}
	d.setState(StateMethodResolved)

	cmd, err := BuildCommand(m, d.paths, d.launcher, lpDir, opts.NMpi)
	if err != nil {
		return nil, d.fail(fmt.Errorf("%w: %w", ErrSolver, err))
	}
	d.setState(StateCommandBuilt)

	d.logger.Info("benders_launch",
		"method", m.String(),
		"cmd", cmd.String(),
		"dir", cmd.Dir,
		"keep_mps", opts.KeepMps,
	)
	if d.callbacks.OnCommand != nil {
		d.callbacks.OnCommand(cmd)
	}

	d.setState(StateRunning)
	start := time.Now()
	if err := d.runner.Run(ctx, cmd); err != nil {
		d.logger.Error("benders_failed", "method", m.String(), "error", err)
		return nil, d.fail(err)
	}
	duration := time.Since(start)

	report := Clean(lpDir, executable, opts.KeepMps, d.logger)
	d.logger.Info("benders_cleaned",
		"removed", report.Count(""),
		"bytes", report.Bytes(""),
		"failed", len(report.Failed),
	)
	if d.callbacks.OnCleaned != nil {
		d.callbacks.OnCleaned(report)
	}
	d.setState(StateCleaned)

	return &Result{
		Method:   m,
		Command:  cmd,
		Start:    start,
		Duration: duration,
		Cleanup:  report,
	}, nil
}

// validatePaths checks the output root and its lp directory and returns the
// lp directory.
func validatePaths(outputPath string) (string, error) {
	if outputPath == "" {
		return "", fmt.Errorf("%w: empty path", ErrOutputPath)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrOutputPath, outputPath, err)
	}

	lpDir := LpPathFor(outputPath)
	info, err := os.Stat(lpDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrLpPath, lpDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrLpPath, lpDir)
	}
	return lpDir, nil
}

// fail moves the launch to StateFailed and returns err unchanged.
func (d *Driver) fail(err error) error {
	d.setState(StateFailed)
	return err
}

// setState updates the state and calls the callback if registered.
func (d *Driver) setState(newState State) {
	d.mu.Lock()
	oldState := d.state
	d.state = newState
	d.mu.Unlock()

	if d.callbacks.OnStateChange != nil && oldState != newState {
		d.callbacks.OnStateChange(oldState, newState)
	}
}
