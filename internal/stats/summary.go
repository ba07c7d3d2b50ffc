// Package stats summarizes a launch for display at program exit.
package stats

import (
	"sort"
	"time"

	"github.com/influxdata/tdigest"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
)

// SizeDistribution describes the sizes of removed artifacts.
type SizeDistribution struct {
	Count int
	P50   int64
	P95   int64
	Max   int64
}

// KindCount is the removal tally for one artifact kind.
type KindCount struct {
	Kind  string
	Files int
	Bytes int64
}

// Summary holds the data for the exit summary.
type Summary struct {
	Method   benders.Method
	Command  string
	LpDir    string
	Outcome  string
	ExitCode int // -1 = solver not started
	Duration time.Duration
	Err      error

	KeepMps bool
	Removed []KindCount
	Failed  []string
	Sizes   SizeDistribution

	// SolverTail holds the last solver output lines, shown on failure.
	SolverTail []string

	MetricsAddr     string
	MetricsTextfile string
}

// NewSummary builds the summary of one launch. res is nil when err is not.
func NewSummary(method benders.Method, res *benders.Result, err error, elapsed time.Duration) *Summary {
	s := &Summary{
		Method:   method,
		Outcome:  benders.Outcome(err),
		ExitCode: benders.ExitCode(err),
		Duration: elapsed,
		Err:      err,
	}

	if res != nil {
		s.Command = res.Command.String()
		s.LpDir = res.Command.Dir
		s.Duration = res.Duration
		s.Removed = countByKind(res.Cleanup)
		s.Failed = res.Cleanup.Failed
		s.Sizes = sizeDistribution(res.Cleanup)
	}

	return s
}

// Succeeded reports whether the launch completed.
func (s *Summary) Succeeded() bool {
	return s.Err == nil
}

// countByKind tallies the report per kind, in a stable order.
func countByKind(report benders.CleanReport) []KindCount {
	byKind := make(map[string]*KindCount)
	for _, f := range report.Removed {
		kc, ok := byKind[f.Kind]
		if !ok {
			kc = &KindCount{Kind: f.Kind}
			byKind[f.Kind] = kc
		}
		kc.Files++
		kc.Bytes += f.Size
	}

	out := make([]KindCount, 0, len(byKind))
	for _, kc := range byKind {
		out = append(out, *kc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// sizeDistribution estimates p50/p95 of the removed file sizes with a
// t-digest; Max is exact.
func sizeDistribution(report benders.CleanReport) SizeDistribution {
	if len(report.Removed) == 0 {
		return SizeDistribution{}
	}

	td := tdigest.NewWithCompression(100)
	var maxSize int64
	for _, f := range report.Removed {
		td.Add(float64(f.Size), 1)
		if f.Size > maxSize {
			maxSize = f.Size
		}
	}

	return SizeDistribution{
		Count: len(report.Removed),
		P50:   clampQuantile(td.Quantile(0.50), maxSize),
		P95:   clampQuantile(td.Quantile(0.95), maxSize),
		Max:   maxSize,
	}
}

// clampQuantile rounds an estimate and keeps it within [0, max].
func clampQuantile(q float64, maxSize int64) int64 {
	v := int64(q + 0.5)
	if v < 0 {
		return 0
	}
	if v > maxSize {
		return maxSize
	}
	return v
}
