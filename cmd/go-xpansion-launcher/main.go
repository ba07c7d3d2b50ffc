// Package main provides the go-xpansion-launcher CLI entry point.
//
// go-xpansion-launcher runs the Benders decomposition step of an
// antares-xpansion study: it picks the solver binary for the requested
// method, starts it from the simulation's lp directory (under mpirun or
// mpiexec for the MPI solver) and cleans up the solver's files once it
// succeeds.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/config"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/logging"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/orchestrator"
	"github.com/randomizedcoder/go-xpansion-launcher/internal/study"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-xpansion-launcher
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Handle version flag early (before flag parsing)
	if len(args) > 0 {
		arg := args[0]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("go-xpansion-launcher %s\n", version)
			return 0
		}
	}

	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return orchestrator.ExitFailure
	}

	// When TUI is enabled, suppress logs to avoid interfering with TUI rendering
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, cfg.LogLevel, cfg.Verbose)
	}
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return orchestrator.ExitFailure
	}

	if cfg.PrintCmd {
		return printCommand(cfg, logger)
	}

	logger.Info("starting",
		"version", version,
		"data_dir", cfg.DataDir,
		"simulation", cfg.SimulationName,
		"method", cfg.Method.String(),
		"n_mpi", cfg.NMpi,
		"keep_mps", cfg.KeepMps,
		"install_dir", cfg.InstallDir,
		"config_file", cfg.ConfigFile,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := orchestrator.New(cfg, logger, orchestrator.WithVersion(version))
	if err := orch.Run(ctx); err != nil {
		logger.Error("launch_failed", "error", err)
		printError(err)
		return orchestrator.ExitCode(err)
	}

	return 0
}

// printCommand prints the solver command that would be run.
func printCommand(cfg *config.Config, logger *slog.Logger) int {
	outputPath, err := study.ResolveOutput(cfg.DataDir, cfg.SimulationName)
	if err != nil {
		printError(err)
		return orchestrator.ExitCode(err)
	}

	driver, err := benders.New(cfg.ExecutablePaths(), benders.WithLogger(logger))
	if err != nil {
		printError(err)
		return orchestrator.ExitCode(err)
	}

	cmd, err := driver.Command(outputPath, cfg.Method.String(), benders.LaunchOptions{
		KeepMps: cfg.KeepMps,
		NMpi:    cfg.NMpi,
	})
	if err != nil {
		printError(err)
		return orchestrator.ExitCode(err)
	}

	fmt.Printf("# Solver command (run from %s):\n", cmd.Dir)
	fmt.Println()
	fmt.Println(cmd.String())
	return 0
}

// printError reports err with a suggestion when one is known.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if hint := orchestrator.Hint(err); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
}
