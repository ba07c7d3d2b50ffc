package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Environment holds the XPANSION_* overrides. Empty values leave the
// corresponding setting untouched.
type Environment struct {
	ConfigFile      string `env:"XPANSION_CONFIG"`
	InstallDir      string `env:"XPANSION_INSTALL_DIR"`
	LogFormat       string `env:"XPANSION_LOG_FORMAT"`
	LogLevel        string `env:"XPANSION_LOG_LEVEL"`
	MetricsAddr     string `env:"XPANSION_METRICS_ADDR"`
	MetricsTextfile string `env:"XPANSION_METRICS_TEXTFILE"`
	NMpi            int    `env:"XPANSION_NP"`
}

// ParseEnv loads the XPANSION_* variables.
func ParseEnv() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply copies the non-empty overrides into cfg.
func (e Environment) Apply(cfg *Config) {
	override(&cfg.ConfigFile, e.ConfigFile)
	override(&cfg.InstallDir, e.InstallDir)
	override(&cfg.LogFormat, e.LogFormat)
	override(&cfg.LogLevel, e.LogLevel)
	override(&cfg.MetricsAddr, e.MetricsAddr)
	override(&cfg.MetricsTextfile, e.MetricsTextfile)
	if e.NMpi != 0 {
		cfg.NMpi = e.NMpi
	}
}

func override(field *string, value string) {
	if value != "" {
		*field = value
	}
}
