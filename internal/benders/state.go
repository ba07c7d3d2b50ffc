package benders

// State is the position of a launch in the driver's state machine.
type State int

const (
	// StateIdle is the state before and between launches.
	StateIdle State = iota

	// StatePathValidated: the output and lp directories exist.
	StatePathValidated

	// StateMethodResolved: the method and its executable are known.
	StateMethodResolved

	// StateCommandBuilt: the command line is ready.
	StateCommandBuilt

	// StateRunning: the solver process is running.
	StateRunning

	// StateCleaned: the solver succeeded and its artifacts were removed.
	StateCleaned

	// StateFailed: the launch stopped on an error.
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePathValidated:
		return "path_validated"
	case StateMethodResolved:
		return "method_resolved"
	case StateCommandBuilt:
		return "command_built"
	case StateRunning:
		return "running"
	case StateCleaned:
		return "cleaned"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for the end states of a launch.
func (s State) IsTerminal() bool {
	return s == StateCleaned || s == StateFailed
}
