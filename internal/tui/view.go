package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// render builds the full screen.
func (m Model) render() string {
	sections := []string{
		m.renderHeader(),
		m.renderLaunch(),
		m.renderOutput(),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	header := fmt.Sprintf(
		" go-xpansion-launcher │ %s │ %s │ Elapsed: %s ",
		m.method,
		m.state,
		formatDuration(m.Elapsed()),
	)
	return headerStyle.Width(m.width).Render(header)
}

func (m Model) renderLaunch() string {
	rows := []string{
		sectionHeaderStyle.Render("Launch"),
		RenderKeyValue("Method", m.method.String()),
		lipgloss.JoinHorizontal(lipgloss.Left,
			labelStyle.Render("State:"),
			StateStyle(m.state).Render(m.state.String()),
		),
	}
	if m.outputPath != "" {
		rows = append(rows, RenderKeyValue("Simulation", m.outputPath))
	}
	if m.command != "" {
		rows = append(rows, RenderKeyValue("Command", truncate(m.command, m.width-18)))
	}
	if m.dir != "" {
		rows = append(rows, RenderKeyValue("Directory", truncate(m.dir, m.width-18)))
	}
	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderOutput() string {
	rows := []string{sectionHeaderStyle.Render("Solver output")}
	if len(m.lines) == 0 {
		rows = append(rows, dimStyle.Render("(no output yet)"))
	}
	for _, line := range m.lines {
		rows = append(rows, mutedStyle.Render(truncate(line, m.width-6)))
	}
	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderFooter() string {
	left := dimStyle.Render("q: close view (solver keeps running)")
	if m.metricsAddr == "" {
		return footerStyle.Render(left)
	}
	right := dimStyle.Render("Metrics: http://" + m.metricsAddr + "/metrics")

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return footerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, left, strings.Repeat(" ", padding), right))
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if max < 10 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
