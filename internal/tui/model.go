// Package tui shows a live terminal view of a running solver.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-xpansion-launcher/internal/benders"
)

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to update the display.
type TickMsg time.Time

// StateMsg carries a driver state transition.
type StateMsg struct {
	State benders.State
}

// CommandMsg carries the command about to run.
type CommandMsg struct {
	Command string
	Dir     string
}

// DoneMsg signals the launch finished; the TUI exits on it.
type DoneMsg struct {
	Err error
}

// =============================================================================
// Model
// =============================================================================

// TailSource provides the most recent solver output lines.
type TailSource interface {
	Lines(n int) []string
}

// Config holds TUI configuration.
type Config struct {
	Method      benders.Method
	OutputPath  string
	MetricsAddr string
	Tail        TailSource
	TailLines   int // default 10
}

// Model represents the TUI state.
type Model struct {
	// Configuration
	method      benders.Method
	outputPath  string
	metricsAddr string
	tail        TailSource
	tailLines   int

	// Current state
	state     benders.State
	command   string
	dir       string
	lines     []string
	startTime time.Time
	now       time.Time
	done      bool
	err       error

	// Display options
	width  int
	height int

	quitting bool
}

// New creates a new TUI model.
func New(cfg Config) Model {
	n := cfg.TailLines
	if n <= 0 {
		n = 10
	}
	now := time.Now()
	return Model{
		method:      cfg.Method,
		outputPath:  cfg.OutputPath,
		metricsAddr: cfg.MetricsAddr,
		tail:        cfg.Tail,
		tailLines:   n,
		startTime:   now,
		now:         now,
		width:       80,
		height:      24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		// The clock stops once the launch reached an end state.
		if !m.state.IsTerminal() {
			m.now = time.Time(msg)
		}
		m.refreshTail()
		if m.done {
			return m, nil
		}
		return m, tickCmd()

	case StateMsg:
		m.state = msg.State
		if m.state.IsTerminal() {
			m.now = time.Now()
		}
		return m, nil

	case CommandMsg:
		m.command = msg.Command
		m.dir = msg.Dir
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.now = time.Now()
		m.refreshTail()
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

func (m *Model) refreshTail() {
	if m.tail != nil {
		m.lines = m.tail.Lines(m.tailLines)
	}
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the view started, up to the end state.
func (m Model) Elapsed() time.Duration {
	return m.now.Sub(m.startTime)
}

// State returns the last driver state received.
func (m Model) State() benders.State {
	return m.state
}

// Done reports whether the launch has finished.
func (m Model) Done() bool {
	return m.done
}

// Err returns the launch error received with DoneMsg.
func (m Model) Err() error {
	return m.err
}

// =============================================================================
// Helpers for external use
// =============================================================================

// Sender is the part of *tea.Program used to feed the view.
type Sender interface {
	Send(msg tea.Msg)
}

// Callbacks returns driver callbacks that forward events to p.
func Callbacks(p Sender) benders.Callbacks {
	return benders.Callbacks{
		OnStateChange: func(_, newState benders.State) {
			p.Send(StateMsg{State: newState})
		},
		OnCommand: func(cmd benders.Command) {
			p.Send(CommandMsg{Command: cmd.String(), Dir: cmd.Dir})
		},
	}
}

// SendDone tells the view the launch finished.
func SendDone(p Sender, err error) {
	if p != nil {
		p.Send(DoneMsg{Err: err})
	}
}

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
