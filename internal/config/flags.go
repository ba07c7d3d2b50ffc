package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
)

// methodValue is a flag.Value restricted to the recognized solver methods.
type methodValue struct {
	m *benders.Method
}

func (v methodValue) String() string {
	if v.m == nil {
		return ""
	}
	return string(*v.m)
}

func (v methodValue) Set(s string) error {
	m, err := benders.ParseMethod(s)
	if err != nil {
		return err
	}
	*v.m = m
	return nil
}

// NewFlagSet returns the launcher's flag set bound to cfg. Current values of
// cfg are the flag defaults.
func NewFlagSet(cfg *Config, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("go-xpansion-launcher", flag.ContinueOnError)
	fs.SetOutput(output)

	// Study
	fs.StringVar(&cfg.DataDir, "i", cfg.DataDir, "Antares study data directory (required)")
	fs.StringVar(&cfg.DataDir, "dataDir", cfg.DataDir, "Antares study data directory (required)")
	fs.StringVar(&cfg.SimulationName, "simulationName", cfg.SimulationName,
		"Name of the antares simulation to use. Must be present in the output directory (default: most recent)")

	// Solver
	method := methodValue{m: &cfg.Method}
	fs.Var(method, "m", `Optimization method: "mpibenders", "mergeMPS", "sequential"`)
	fs.Var(method, "method", `Optimization method: "mpibenders", "mergeMPS", "sequential"`)
	fs.IntVar(&cfg.NMpi, "n", cfg.NMpi, "Number of MPI processes")
	fs.IntVar(&cfg.NMpi, "np", cfg.NMpi, "Number of MPI processes")
	fs.BoolVar(&cfg.KeepMps, "keepMps", cfg.KeepMps, "Keep .mps and .lp files after the benders step")

	// Installation
	fs.StringVar(&cfg.InstallDir, "installDir", cfg.InstallDir, "The directory where all binaries are located")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Path to config.yaml (default: next to the binary, then ./config.yaml)")

	// Observability
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, `Log level: "debug", "info", "warn", "error"`)
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Serve Prometheus metrics on this address while the solver runs")
	fs.StringVar(&cfg.MetricsTextfile, "metrics-textfile", cfg.MetricsTextfile, "Write final metrics to this .prom file (node_exporter textfile collector)")
	fs.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Show a live terminal view while the solver runs")

	// Safety & Diagnostics (double-dash convention)
	fs.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print the solver command and exit")
	fs.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")

	fs.Usage = func() { printUsage(fs) }
	return fs
}

// ParseFlags parses command-line arguments into cfg.
// It returns flag.ErrHelp when -h or -help was given.
func ParseFlags(cfg *Config, args []string) error {
	fs := NewFlagSet(cfg, os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}

// printUsage prints the categorized help text.
func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, `go-xpansion-launcher - Benders decomposition launcher for antares-xpansion studies

Usage:
  go-xpansion-launcher -i <study> [flags]

Study Flags:
`)
	printFlagCategory(fs, []string{"i", "dataDir", "simulationName"})

	fmt.Fprintf(w, "\nSolver:\n")
	printFlagCategory(fs, []string{"m", "method", "n", "np", "keepMps"})

	fmt.Fprintf(w, "\nInstallation:\n")
	printFlagCategory(fs, []string{"installDir", "config"})

	fmt.Fprintf(w, "\nObservability:\n")
	printFlagCategory(fs, []string{"log-format", "log-level", "v", "metrics", "metrics-textfile", "tui"})

	fmt.Fprintf(w, "\nSafety & Diagnostics:\n")
	printFlagCategory(fs, []string{"print-cmd", "skip-preflight"})

	fmt.Fprintf(w, `
Environment:
  XPANSION_CONFIG, XPANSION_INSTALL_DIR, XPANSION_LOG_FORMAT, XPANSION_LOG_LEVEL,
  XPANSION_METRICS_ADDR, XPANSION_METRICS_TEXTFILE, XPANSION_NP

Examples:
  # Sequential benders on the most recent simulation
  go-xpansion-launcher -i ./my-study

  # MPI benders with 8 processes, keeping the MPS files
  go-xpansion-launcher -i ./my-study -m mpibenders -n 8 -keepMps

  # Show what would be run
  go-xpansion-launcher -i ./my-study -m mergeMPS --print-cmd

`)
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(fs *flag.FlagSet, names []string) {
	w := fs.Output()
	fs.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(w, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
					fmt.Fprintf(w, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(w)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	switch f.DefValue {
	case "true", "false":
		return ""
	}

	if _, ok := f.Value.(methodValue); ok {
		return "method"
	}

	if _, err := fmt.Sscanf(f.DefValue, "%d", new(int)); err == nil {
		return "int"
	}

	return "string"
}
