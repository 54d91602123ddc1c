package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/statdeck/statdeck/internal/core"
)

func points(values ...int) []core.ChartPoint {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]core.ChartPoint, len(values))
	for i, v := range values {
		out[i] = core.ChartPoint{Time: base.AddDate(0, 0, i), Value: v}
	}
	return out
}

func TestRenderSparklineWidth(t *testing.T) {
	got := RenderSparkline(points(1, 5, 3, 8, 2), 10, colorAccent)
	if runes := len([]rune(stripANSI(got))); runes != 5 {
		t.Errorf("sparkline rune count = %d, want 5", runes)
	}
}

func TestRenderSparklineDownsamples(t *testing.T) {
	values := make([]int, 100)
	for i := range values {
		values[i] = i
	}
	got := stripANSI(RenderSparkline(points(values...), 20, colorAccent))
	if len([]rune(got)) != 20 {
		t.Errorf("downsampled width = %d, want 20", len([]rune(got)))
	}
}

func TestRenderSparklineEmpty(t *testing.T) {
	if got := RenderSparkline(nil, 10, colorAccent); got != "" {
		t.Errorf("empty sparkline = %q, want empty", got)
	}
}

func TestRenderBreakdownScalesBars(t *testing.T) {
	items := []core.MetricItem{
		{Label: "/pricing", Value: 100},
		{Label: "/", Value: 50},
	}
	out := stripANSI(RenderBreakdown(items, 10, 12))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}
	if count := strings.Count(lines[0], "█"); count != 10 {
		t.Errorf("max bar length = %d, want 10", count)
	}
	if count := strings.Count(lines[1], "█"); count != 5 {
		t.Errorf("half bar length = %d, want 5", count)
	}
}

func TestRenderBreakdownEmpty(t *testing.T) {
	out := RenderBreakdown(nil, 10, 12)
	if !strings.Contains(out, "No data") {
		t.Errorf("empty breakdown = %q", out)
	}
}

func TestRenderDetailChartEmpty(t *testing.T) {
	out := RenderDetailChart(nil, 40, 6)
	if !strings.Contains(out, "No data") {
		t.Errorf("empty chart = %q", out)
	}
}

// stripANSI removes escape sequences so tests can count visible runes.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
