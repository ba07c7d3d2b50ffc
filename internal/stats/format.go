package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorSuccess   = lipgloss.Color("#10B981") // Green
	colorError     = lipgloss.Color("#EF4444") // Red
	colorTextMuted = lipgloss.Color("#9CA3AF") // Medium gray

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Width(18)

	okStyle = lipgloss.NewStyle().
		Foreground(colorSuccess).
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	tailStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			PaddingLeft(2)
)

const rule = "───────────────────────────────────────────────────────────────"

// FormatSummary renders the exit summary.
func FormatSummary(s *Summary) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("go-xpansion-launcher Summary"))
	b.WriteString("\n" + rule + "\n")

	outcome := okStyle.Render(s.Outcome)
	if !s.Succeeded() {
		outcome = failStyle.Render(s.Outcome)
	}
	kv(&b, "Method", s.Method.String())
	kv(&b, "Outcome", outcome)
	if s.ExitCode >= 0 {
		kv(&b, "Exit Code", fmt.Sprintf("%d %s", s.ExitCode, exitCodeLabel(s.ExitCode)))
	}
	kv(&b, "Duration", FormatDuration(s.Duration))
	if s.Command != "" {
		kv(&b, "Command", s.Command)
	}
	if s.LpDir != "" {
		kv(&b, "Lp Directory", s.LpDir)
	}

	if s.Succeeded() {
		b.WriteString("\n" + sectionStyle.Render("Cleanup") + "\n")
		if len(s.Removed) == 0 {
			b.WriteString("  nothing removed\n")
		}
		for _, kc := range s.Removed {
			fmt.Fprintf(&b, "  %-6s %8s files %12s\n", kc.Kind, FormatNumber(int64(kc.Files)), FormatBytes(kc.Bytes))
		}
		if s.KeepMps {
			b.WriteString("  .mps and .lp files kept (--keepMps)\n")
		}
		if s.Sizes.Count > 0 {
			fmt.Fprintf(&b, "  sizes  p50 %s  p95 %s  max %s\n",
				FormatBytes(s.Sizes.P50), FormatBytes(s.Sizes.P95), FormatBytes(s.Sizes.Max))
		}
		for _, f := range s.Failed {
			fmt.Fprintf(&b, "  %s could not remove %s\n", failStyle.Render("!"), f)
		}
	} else {
		b.WriteString("\n" + sectionStyle.Render("Error") + "\n")
		fmt.Fprintf(&b, "  %v\n", s.Err)
		if len(s.SolverTail) > 0 {
			b.WriteString("\n" + sectionStyle.Render("Last solver output") + "\n")
			for _, line := range s.SolverTail {
				b.WriteString(tailStyle.Render(line) + "\n")
			}
		}
	}

	if s.MetricsAddr != "" || s.MetricsTextfile != "" {
		b.WriteString("\n")
		if s.MetricsAddr != "" {
			fmt.Fprintf(&b, "Metrics endpoint was: http://%s/metrics\n", s.MetricsAddr)
		}
		if s.MetricsTextfile != "" {
			fmt.Fprintf(&b, "Metrics written to: %s\n", s.MetricsTextfile)
		}
	}

	b.WriteString(rule + "\n")
	return b.String()
}

func kv(b *strings.Builder, label, value string) {
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, labelStyle.Render(label+":"), value))
	b.WriteString("\n")
}

// exitCodeLabel returns a human-readable label for common exit codes.
func exitCodeLabel(code int) string {
	switch code {
	case 0:
		return "(clean)"
	case 1:
		return "(error)"
	case 134:
		return "(SIGABRT)"
	case 137:
		return "(SIGKILL)"
	case 139:
		return "(SIGSEGV)"
	case 143:
		return "(SIGTERM)"
	default:
		return ""
	}
}

// =============================================================================
// Formatting Helper Functions (exported for reuse)
// =============================================================================

// FormatDuration formats a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatNumber formats a count with K/M suffixes.
func FormatNumber(n int64) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

// FormatBytes formats a byte count using decimal units.
func FormatBytes(n int64) string {
	if n >= 1_000_000_000 {
		return fmt.Sprintf("%.2f GB", float64(n)/1_000_000_000)
	}
	if n >= 1_000_000 {
		return fmt.Sprintf("%.2f MB", float64(n)/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%.2f KB", float64(n)/1_000)
	}
	return fmt.Sprintf("%d B", n)
}
