package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
)

// Load builds the configuration from defaults, environment and args, then
// resolves paths and reads config.yaml. It does not validate.
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	e, err := ParseEnv()
	if err != nil {
		return nil, err
	}
	e.Apply(cfg)

	if err := ParseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.ResolvePaths(); err != nil {
		return nil, err
	}

	if err := cfg.LoadConfigFile(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolvePaths makes the data and install directories absolute and picks the
// default install directory when none was given.
func (c *Config) ResolvePaths() error {
	if c.DataDir != "" {
		abs, err := filepath.Abs(c.DataDir)
		if err != nil {
			return fmt.Errorf("data dir: %w", err)
		}
		c.DataDir = abs
	}

	if c.InstallDir == "" {
		c.InstallDir = DefaultInstallDir()
		return nil
	}
	abs, err := filepath.Abs(c.InstallDir)
	if err != nil {
		return fmt.Errorf("install dir: %w", err)
	}
	c.InstallDir = abs
	return nil
}

// LoadConfigFile reads executable names from ConfigFile, or from the first
// config.yaml found when ConfigFile is empty. Without any file the default
// names are kept.
func (c *Config) LoadConfigFile() error {
	path := c.ConfigFile
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil
		}
	}

	exes, err := LoadExecutables(path)
	if err != nil {
		return err
	}
	c.ConfigFile = path
	c.Executables = exes
	return nil
}

// DefaultInstallDir returns the bin directory next to the running binary if
// it exists, otherwise ./bin under the working directory.
func DefaultInstallDir() string {
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "bin")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "bin"
	}
	return filepath.Join(wd, "bin")
}

// ExecutablePaths returns the solver binaries under the install directory.
func (c *Config) ExecutablePaths() benders.ExecutablePaths {
	return benders.ExecutablePaths{
		MPIBenders: c.executable(c.Executables.BendersMPI),
		Sequential: c.executable(c.Executables.BendersSequential),
		MergeMPS:   c.executable(c.Executables.MergeMPS),
	}
}

func (c *Config) executable(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.InstallDir, name)
}
