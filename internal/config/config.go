// Package config provides configuration management for go-xpansion-launcher.
//
// Values are layered: built-in defaults, then XPANSION_* environment
// variables, then command-line flags. Executable names come from the suite's
// config.yaml. The result is validated once and treated as read-only.
package config

import "github.com/randomizedcoder/go-xpansion-launcher/internal/benders"

// Config holds all configuration options for a launch.
type Config struct {
	// Study
	DataDir        string `json:"data_dir"`
	SimulationName string `json:"simulation_name"` // empty = most recent

	// Solver
	Method  benders.Method `json:"method"`
	NMpi    int            `json:"n_mpi"`
	KeepMps bool           `json:"keep_mps"`

	// Installation
	InstallDir  string      `json:"install_dir"` // empty = auto-detect
	ConfigFile  string      `json:"config_file"` // empty = search
	Executables Executables `json:"executables"`

	// Observability
	LogFormat       string `json:"log_format"` // json, text
	LogLevel        string `json:"log_level"`
	Verbose         bool   `json:"verbose"`
	MetricsAddr     string `json:"metrics_addr"`     // empty = no server
	MetricsTextfile string `json:"metrics_textfile"` // empty = not written
	TUIEnabled      bool   `json:"tui"`

	// Diagnostic modes
	PrintCmd      bool `json:"print_cmd"`
	SkipPreflight bool `json:"skip_preflight"`
}

// Executables holds the binary names declared in config.yaml and the solvers
// the installation was built with.
type Executables struct {
	Antares           string   `json:"antares" yaml:"ANTARES"`
	MergeMPS          string   `json:"merge_mps" yaml:"MERGE_MPS"`
	BendersMPI        string   `json:"benders_mpi" yaml:"BENDERS_MPI"`
	BendersSequential string   `json:"benders_sequential" yaml:"BENDERS_SEQUENTIAL"`
	LpNamer           string   `json:"lp_namer" yaml:"LP_NAMER"`
	StudyUpdater      string   `json:"study_updater" yaml:"STUDY_UPDATER"`
	AvailableSolvers  []string `json:"available_solvers" yaml:"AVAILABLE_SOLVER"`
}

// DefaultExecutables returns the names used when config.yaml omits a key.
func DefaultExecutables() Executables {
	return Executables{
		Antares:           "antares-solver",
		MergeMPS:          "merge_mps",
		BendersMPI:        "bender_mpi",
		BendersSequential: "benders_sequential",
		LpNamer:           "lp_namer",
		StudyUpdater:      "study_updater",
		AvailableSolvers:  []string{},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Solver
		Method:  benders.MethodSequential,
		NMpi:    4,
		KeepMps: false,

		Executables: DefaultExecutables(),

		// Observability
		LogFormat:  "text",
		LogLevel:   "info",
		TUIEnabled: false,
	}
}
