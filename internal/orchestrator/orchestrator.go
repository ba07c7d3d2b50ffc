// Package orchestrator ties the launcher's components together for one run:
// simulation lookup, preflight checks, metrics, the Benders driver, the
// optional live view and the exit summary.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/config"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/logging"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/metrics"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/preflight"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/stats"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/study"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/tui"
)

// ErrPreflight is returned when a preflight check fails.
var ErrPreflight = errors.New("preflight checks failed")

// summaryTailLines is how many solver lines the failure summary shows.
const summaryTailLines = 20

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRunner replaces the solver process runner.
func WithRunner(r benders.Runner) Option {
	return func(o *Orchestrator) { o.runner = r }
}

// WithPlatform overrides the platform used to pick the MPI launcher.
func WithPlatform(goos string) Option {
	return func(o *Orchestrator) { o.goos = goos }
}

// WithOutput sets where solver output, preflight results and the summary go.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *Orchestrator) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithVersion sets the version reported in metrics.
func WithVersion(v string) Option {
	return func(o *Orchestrator) { o.version = v }
}

// Orchestrator coordinates all components for a launch.
type Orchestrator struct {
	config  *config.Config
	logger  *slog.Logger
	version string
	goos    string

	stdout io.Writer
	stderr io.Writer

	runner        benders.Runner
	tail          *logging.OutputTail
	tailStreams   []io.WriteCloser // stdout, stderr
	metrics       *metrics.Collector
	metricsServer *metrics.Server
	program       *tea.Program

	outputPath string
	summary    *stats.Summary
	startTime  time.Time
}

// New creates a new Orchestrator with the given configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		config:  cfg,
		logger:  logger,
		version: "dev",
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.tail = logging.NewOutputTail(logging.DefaultTailLines, logger)
	o.tailStreams = []io.WriteCloser{o.tail.Stream("stdout"), o.tail.Stream("stderr")}
	o.metrics = metrics.NewCollector(metrics.CollectorConfig{
		Version:  o.version,
		Platform: o.platformName(),
		Method:   cfg.Method,
	})
	if cfg.MetricsAddr != "" {
		o.metricsServer = metrics.NewServer(cfg.MetricsAddr, o.metrics.Registry(), logger)
	}

	return o
}

// Run executes one launch. It blocks until the solver exits.
//
// Errors from the driver are returned unchanged so callers can classify them
// with errors.Is and errors.As.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.startTime = time.Now()

	outputPath, err := study.ResolveOutput(o.config.DataDir, o.config.SimulationName)
	if err != nil {
		return err
	}
	o.outputPath = outputPath
	o.logger.Info("simulation_selected", "output", outputPath)

	if o.config.TUIEnabled {
		o.program = o.newProgram(outputPath)
	}

	driver, err := o.newDriver()
	if err != nil {
		return err
	}

	// Layout and method errors keep their own kind; preflight only looks at
	// a valid lp directory.
	if _, err := driver.Command(outputPath, o.config.Method.String(), o.launchOptions()); err != nil {
		return err
	}

	if !o.config.SkipPreflight {
		if err := o.preflight(driver, outputPath); err != nil {
			return err
		}
	}

	if o.metricsServer != nil {
		if err := o.metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	res, launchErr := o.launch(ctx, driver, outputPath)
	for _, s := range o.tailStreams {
		s.Close() // flush a trailing partial line
	}

	elapsed := time.Since(o.startTime)
	duration := elapsed
	if res != nil {
		duration = res.Duration
	}
	o.metrics.RecordLaunch(o.config.Method, launchErr, duration)

	o.shutdown()

	o.summary = o.buildSummary(res, launchErr, elapsed)
	fmt.Fprint(o.stdout, stats.FormatSummary(o.summary))

	return launchErr
}

// Summary returns the summary of the last Run, or nil before Run completes.
func (o *Orchestrator) Summary() *stats.Summary {
	return o.summary
}

// Metrics returns the run's metrics collector.
func (o *Orchestrator) Metrics() *metrics.Collector {
	return o.metrics
}

// OutputPath returns the simulation output selected by Run.
func (o *Orchestrator) OutputPath() string {
	return o.outputPath
}

// newDriver builds the Benders driver wired to metrics and the output tail.
func (o *Orchestrator) newDriver() (*benders.Driver, error) {
	runner := o.runner
	if runner == nil {
		stdout := io.Writer(o.tailStreams[0])
		stderr := io.Writer(o.tailStreams[1])
		// The live view owns the terminal; output only goes to the tail.
		if !o.config.TUIEnabled {
			stdout = io.MultiWriter(o.stdout, stdout)
			stderr = io.MultiWriter(o.stderr, stderr)
		}
		runner = &benders.ExecRunner{Stdout: stdout, Stderr: stderr, Logger: o.logger}
	}

	opts := []benders.Option{
		benders.WithLogger(o.logger),
		benders.WithRunner(runner),
		benders.WithCallbacks(o.callbacks(o.view())),
	}
	if o.goos != "" {
		opts = append(opts, benders.WithPlatform(o.goos))
	}
	return benders.New(o.config.ExecutablePaths(), opts...)
}

// callbacks returns the driver hooks. Events also go to the live view when
// view is non-nil.
func (o *Orchestrator) callbacks(view tui.Sender) benders.Callbacks {
	var forward benders.Callbacks
	if view != nil {
		forward = tui.Callbacks(view)
	}

	return benders.Callbacks{
		OnStateChange: func(oldState, newState benders.State) {
			o.logger.Debug("driver_state", "from", oldState.String(), "to", newState.String())
			o.metrics.RecordState(newState)
			if forward.OnStateChange != nil {
				forward.OnStateChange(oldState, newState)
			}
		},
		OnCommand: func(cmd benders.Command) {
			if forward.OnCommand != nil {
				forward.OnCommand(cmd)
			}
		},
		OnCleaned: func(report benders.CleanReport) {
			o.metrics.RecordCleanup(report)
		},
	}
}

// preflight runs the startup checks and prints their results.
func (o *Orchestrator) preflight(driver *benders.Driver, outputPath string) error {
	executable, err := driver.Paths().For(o.config.Method)
	if err != nil {
		return fmt.Errorf("%w: %w", benders.ErrSolver, err)
	}

	result := preflight.RunAll(preflight.Params{
		Method:           o.config.Method,
		Executable:       executable,
		Launcher:         driver.Launcher(),
		LpDir:            benders.LpPathFor(outputPath),
		NMpi:             o.config.NMpi,
		AvailableSolvers: o.config.Executables.AvailableSolvers,
	})
	preflight.PrintResults(o.stdout, result)
	if !result.Passed {
		return fmt.Errorf("%w (use --skip-preflight to override)", ErrPreflight)
	}
	return nil
}

// launch runs the driver, under the live view when enabled.
func (o *Orchestrator) launch(ctx context.Context, driver *benders.Driver, outputPath string) (*benders.Result, error) {
	opts := o.launchOptions()
	method := o.config.Method.String()

	if o.program == nil {
		return driver.Launch(ctx, outputPath, method, opts)
	}

	viewDone := make(chan struct{})
	go func() {
		defer close(viewDone)
		if _, err := o.program.Run(); err != nil {
			o.logger.Warn("tui_error", "error", err)
		}
	}()

	res, err := driver.Launch(ctx, outputPath, method, opts)
	tui.SendDone(o.program, err)
	<-viewDone

	return res, err
}

func (o *Orchestrator) launchOptions() benders.LaunchOptions {
	return benders.LaunchOptions{KeepMps: o.config.KeepMps, NMpi: o.config.NMpi}
}

// newProgram creates the live view for outputPath.
func (o *Orchestrator) newProgram(outputPath string) *tea.Program {
	return tea.NewProgram(
		tui.New(tui.Config{
			Method:      o.config.Method,
			OutputPath:  outputPath,
			MetricsAddr: o.config.MetricsAddr,
			Tail:        o.tail,
		}),
		tea.WithAltScreen(),
		tea.WithOutput(o.stdout),
	)
}

// view returns the live view as a message sink, or nil without one.
func (o *Orchestrator) view() tui.Sender {
	if o.program == nil {
		return nil
	}
	return o.program
}

// shutdown stops the metrics server and writes the textfile.
func (o *Orchestrator) shutdown() {
	if o.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.metricsServer.Shutdown(ctx); err != nil {
			o.logger.Warn("metrics_server_shutdown_error", "error", err)
		}
	}

	if path := o.config.MetricsTextfile; path != "" {
		if err := o.metrics.WriteTextfile(path); err != nil {
			o.logger.Error("metrics_textfile_failed", "path", path, "error", err)
		} else {
			o.logger.Info("metrics_textfile_written", "path", path)
		}
	}
}

func (o *Orchestrator) buildSummary(res *benders.Result, err error, elapsed time.Duration) *stats.Summary {
	s := stats.NewSummary(o.config.Method, res, err, elapsed)
	s.KeepMps = o.config.KeepMps
	if err != nil {
		s.SolverTail = o.tail.Lines(summaryTailLines)
	}
	if o.metricsServer != nil {
		s.MetricsAddr = o.metricsServer.Addr()
	}
	s.MetricsTextfile = o.config.MetricsTextfile
	return s
}

// platformName returns the platform identifier the driver resolves.
func (o *Orchestrator) platformName() string {
	if o.goos != "" {
		return o.goos
	}
	return runtime.GOOS
}
