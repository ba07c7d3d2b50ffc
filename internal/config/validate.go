package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or all problems joined into one error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.DataDir == "" {
		errs = append(errs, ValidationError{
			Field:   "data_dir",
			Message: "antares study data directory is required (-i)",
		})
	} else if info, err := os.Stat(cfg.DataDir); err != nil || !info.IsDir() {
		errs = append(errs, ValidationError{
			Field:   "data_dir",
			Message: fmt.Sprintf("%s is not a directory", cfg.DataDir),
		})
	}

	if strings.ContainsAny(cfg.SimulationName, `/\`) {
		errs = append(errs, ValidationError{
			Field:   "simulation_name",
			Message: fmt.Sprintf("must be a directory name, not a path (got %q)", cfg.SimulationName),
		})
	}

	if _, err := benders.ParseMethod(string(cfg.Method)); err != nil {
		errs = append(errs, ValidationError{
			Field:   "method",
			Message: err.Error(),
		})
	}

	// Minimum of MPI processes is 1
	if cfg.NMpi < 1 {
		errs = append(errs, ValidationError{
			Field:   "n_mpi",
			Message: fmt.Sprintf("must be at least 1 (got %d)", cfg.NMpi),
		})
	}

	exes := []struct{ field, name string }{
		{"benders_mpi", cfg.Executables.BendersMPI},
		{"benders_sequential", cfg.Executables.BendersSequential},
		{"merge_mps", cfg.Executables.MergeMPS},
	}
	for _, exe := range exes {
		if strings.TrimSpace(exe.name) == "" {
			errs = append(errs, ValidationError{Field: exe.field, Message: "executable name must not be empty"})
		}
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error (got %q)", cfg.LogLevel),
		})
	}

	if cfg.MetricsTextfile != "" {
		if !strings.HasSuffix(cfg.MetricsTextfile, ".prom") {
			errs = append(errs, ValidationError{
				Field:   "metrics_textfile",
				Message: "must end in .prom for the textfile collector",
			})
		}
		dir := filepath.Dir(cfg.MetricsTextfile)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			errs = append(errs, ValidationError{
				Field:   "metrics_textfile",
				Message: fmt.Sprintf("directory %s does not exist", dir),
			})
		}
	}

	if cfg.TUIEnabled && cfg.PrintCmd {
		errs = append(errs, ValidationError{
			Field:   "tui",
			Message: "cannot be combined with --print-cmd",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
