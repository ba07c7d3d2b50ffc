// Package study locates simulation outputs inside an antares study.
package study

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// OutputDirName is the study directory holding one subdirectory per simulation.
const OutputDirName = "output"

var (
	// ErrNoOutputDir is returned when the study has no output directory.
	ErrNoOutputDir = errors.New("study has no output directory")

	// ErrNoSimulation is returned when no simulation output can be selected.
	ErrNoSimulation = errors.New("no simulation output found")
)

// OutputDir returns <dataDir>/output.
func OutputDir(dataDir string) string {
	return filepath.Join(dataDir, OutputDirName)
}

// ResolveOutput returns the simulation output directory for simulationName.
// An empty name selects the most recent simulation. Antares names outputs
// with a timestamp prefix, so the lexicographically last directory wins.
func ResolveOutput(dataDir, simulationName string) (string, error) {
	outputDir := OutputDir(dataDir)
	info, err := os.Stat(outputDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNoOutputDir, outputDir)
	}

	if simulationName != "" {
		return filepath.Join(outputDir, simulationName), nil
	}

	sims, err := Simulations(dataDir)
	if err != nil {
		return "", err
	}
	if len(sims) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoSimulation, outputDir)
	}
	return filepath.Join(outputDir, sims[len(sims)-1]), nil
}

// Simulations lists the simulation directory names under <dataDir>/output,
// oldest first.
func Simulations(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(OutputDir(dataDir))
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
