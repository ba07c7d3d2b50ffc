// Package metrics provides Prometheus metrics for go-xpansion-launcher.
//
// Metrics are registered on a private registry so the launcher's families can
// be served while the solver runs and written to a node_exporter textfile
// once it exits, without the Go runtime collectors mixed in.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
)

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Version  string
	Platform string
	Method   benders.Method
}

// Collector manages all Prometheus metrics for a launch.
type Collector struct {
	registry *prometheus.Registry

	// --- Launch ---
	info     *prometheus.GaugeVec
	launches *prometheus.CounterVec
	duration *prometheus.HistogramVec
	exitCode prometheus.Gauge
	state    prometheus.Gauge

	// --- Cleanup ---
	removedFiles *prometheus.CounterVec
	removedBytes *prometheus.CounterVec

	mu         sync.Mutex
	startTime  time.Time
	lastState  benders.State
	lastResult string
}

// NewCollector creates a collector with its own registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.NewRegistry())
}

// NewCollectorWithRegistry creates a collector on the given registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry *prometheus.Registry) *Collector {
	c := &Collector{
		registry:  registry,
		startTime: time.Now(),

		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "xpansion_launcher_info",
				Help: "Information about the launcher (value always 1)",
			},
			[]string{"version", "platform", "method"},
		),
		launches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xpansion_launches_total",
				Help: "Solver launches by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "xpansion_launch_duration_seconds",
				Help: "Wall time of successful solver runs",
				// 1s to ~3 days
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"method"},
		),
		exitCode: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "xpansion_solver_exit_code",
				Help: "Exit code of the last solver process (-1 = not started)",
			},
		),
		state: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "xpansion_driver_state",
				Help: "Current driver state (0=idle 1=path_validated 2=method_resolved 3=command_built 4=running 5=cleaned 6=failed)",
			},
		),
		removedFiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xpansion_artifacts_removed_total",
				Help: "Solver artifacts removed after a successful run",
			},
			[]string{"kind"},
		),
		removedBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xpansion_artifacts_removed_bytes_total",
				Help: "Bytes freed by artifact removal",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		c.info,
		c.launches,
		c.duration,
		c.exitCode,
		c.state,
		c.removedFiles,
		c.removedBytes,
	)

	// Set initial values
	c.info.WithLabelValues(cfg.Version, cfg.Platform, cfg.Method.String()).Set(1)
	c.exitCode.Set(-1)
	for _, kind := range []string{benders.KindLog, benders.KindMPS, benders.KindLP} {
		c.removedFiles.WithLabelValues(kind)
		c.removedBytes.WithLabelValues(kind)
	}

	return c
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// =============================================================================
// Event Recording Methods
// =============================================================================

// RecordState records a driver state transition.
func (c *Collector) RecordState(s benders.State) {
	c.state.Set(float64(s))

	c.mu.Lock()
	c.lastState = s
	c.mu.Unlock()
}

// RecordLaunch records the end of a launch. err is the error returned by
// Driver.Launch.
func (c *Collector) RecordLaunch(method benders.Method, err error, d time.Duration) {
	outcome := benders.Outcome(err)
	c.launches.WithLabelValues(method.String(), outcome).Inc()
	if err == nil {
		c.duration.WithLabelValues(method.String()).Observe(d.Seconds())
	}
	if code := benders.ExitCode(err); code >= 0 {
		c.exitCode.Set(float64(code))
	}

	c.mu.Lock()
	c.lastResult = outcome
	c.mu.Unlock()
}

// RecordCleanup records the artifacts removed after a run.
func (c *Collector) RecordCleanup(report benders.CleanReport) {
	for _, f := range report.Removed {
		c.removedFiles.WithLabelValues(f.Kind).Inc()
		c.removedBytes.WithLabelValues(f.Kind).Add(float64(f.Size))
	}
}

// LastState returns the last recorded driver state.
func (c *Collector) LastState() benders.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastState
}

// LastOutcome returns the outcome of the last recorded launch, or "" if none.
func (c *Collector) LastOutcome() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// Uptime returns the time since the collector was created.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}
