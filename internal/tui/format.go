package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/statdeck/statdeck/internal/core"
)

// formatCount renders visitor-scale numbers compactly: 950, 1.2k, 3.4M.
func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1fM", float64(n)/1_000_000))
	case n >= 1_000:
		return trimZero(fmt.Sprintf("%.1fk", float64(n)/1_000))
	default:
		return fmt.Sprintf("%d", n)
	}
}

func trimZero(s string) string {
	if i := strings.Index(s, ".0"); i >= 0 {
		return s[:i] + s[i+2:]
	}
	return s
}

// formatDuration renders seconds as "4m 32s" (or "1h 4m" past the hour).
func formatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}

// formatChange renders a period-over-period delta with direction coloring.
// Zero renders dimmed so flat metrics do not shout.
func formatChange(mv core.MetricValue) string {
	switch {
	case mv.Change > 0:
		return upStyle.Render("▲ " + formatCount(mv.Change))
	case mv.Change < 0:
		return downStyle.Render("▼ " + formatCount(-mv.Change))
	default:
		return dimStyle.Render("–")
	}
}

// fitWidth hard-cuts a styled string to width, padding with spaces so
// adjacent cells stay aligned.
func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	out := ansi.Cut(s, 0, width)
	if pad := width - lipgloss.Width(out); pad > 0 {
		out += strings.Repeat(" ", pad)
	}
	return out
}
