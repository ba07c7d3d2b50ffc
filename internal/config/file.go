package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFileName is the suite's configuration file name.
const DefaultConfigFileName = "config.yaml"

// ErrEmptyConfigFile is returned for a config file without content.
var ErrEmptyConfigFile = errors.New("config file content is empty")

// ParseExecutables decodes config.yaml content. Missing keys keep their
// default names and a missing AVAILABLE_SOLVER is an empty list.
func ParseExecutables(data []byte) (Executables, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Executables{}, fmt.Errorf("decode config: %w", err)
	}
	if len(raw) == 0 {
		return Executables{}, ErrEmptyConfigFile
	}

	exes := DefaultExecutables()
	if err := yaml.Unmarshal(data, &exes); err != nil {
		return Executables{}, fmt.Errorf("decode config: %w", err)
	}

	defaults := DefaultExecutables()
	fillDefault(&exes.Antares, defaults.Antares)
	fillDefault(&exes.MergeMPS, defaults.MergeMPS)
	fillDefault(&exes.BendersMPI, defaults.BendersMPI)
	fillDefault(&exes.BendersSequential, defaults.BendersSequential)
	fillDefault(&exes.LpNamer, defaults.LpNamer)
	fillDefault(&exes.StudyUpdater, defaults.StudyUpdater)
	if exes.AvailableSolvers == nil {
		exes.AvailableSolvers = []string{}
	}

	return exes, nil
}

// LoadExecutables reads and decodes a config.yaml file.
func LoadExecutables(path string) (Executables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Executables{}, fmt.Errorf("read config %s: %w", path, err)
	}
	exes, err := ParseExecutables(data)
	if err != nil {
		return Executables{}, fmt.Errorf("%s: %w", path, err)
	}
	return exes, nil
}

// FindConfigFile returns the first config.yaml found next to the running
// binary or in the working directory, or "" if there is none.
func FindConfigFile() string {
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), DefaultConfigFileName))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, DefaultConfigFileName))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

func fillDefault(field *string, def string) {
	if *field == "" {
		*field = def
	}
}
