package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/statdeck/statdeck/internal/core"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline draws a one-line block sparkline, downsampling when the
// series is wider than w.
func RenderSparkline(points []core.ChartPoint, w int, color lipgloss.Color) string {
	values := lo.Map(points, func(p core.ChartPoint, _ int) float64 {
		return float64(p.Value)
	})
	if len(values) == 0 || w < 1 {
		return ""
	}

	if len(values) > w {
		step := float64(len(values)) / float64(w)
		sampled := make([]float64, w)
		for i := 0; i < w; i++ {
			idx := int(float64(i) * step)
			if idx >= len(values) {
				idx = len(values) - 1
			}
			sampled[i] = values[idx]
		}
		values = sampled
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	rng := maxV - minV
	if rng == 0 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(sparkBlocks)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		sb.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

// RenderDetailChart draws the tall multi-row chart used on the site detail
// screen.
func RenderDetailChart(points []core.ChartPoint, w, h int) string {
	if len(points) == 0 {
		return dimStyle.Render("  No data for this range")
	}
	if w < 10 {
		w = 10
	}
	if h < 3 {
		h = 3
	}

	chart := sparkline.New(w, h, sparkline.WithStyle(lipgloss.NewStyle().Foreground(colorAccent)))
	for _, p := range points {
		chart.Push(float64(p.Value))
	}
	chart.Draw()
	return chart.View()
}

// RenderBreakdown draws a label/bar/value row per item, scaled to the
// largest value.
func RenderBreakdown(items []core.MetricItem, maxBarW, labelW int) string {
	if len(items) == 0 {
		return dimStyle.Render("  No data available")
	}
	if maxBarW < 4 {
		maxBarW = 4
	}

	maxVal := 0
	for _, item := range items {
		if item.Value > maxVal {
			maxVal = item.Value
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	lines := lo.Map(items, func(item core.MetricItem, _ int) string {
		label := item.Label
		if len(label) > labelW {
			label = label[:labelW-1] + "…"
		}
		labelRendered := labelStyle.Width(labelW).Render(label)

		barLen := item.Value * maxBarW / maxVal
		if barLen < 1 && item.Value > 0 {
			barLen = 1
		}
		bar := lipgloss.NewStyle().Foreground(colorBlue).Render(strings.Repeat("█", barLen))
		track := lipgloss.NewStyle().Foreground(colorSurface).Render(strings.Repeat("░", maxBarW-barLen))

		value := valueStyle.Bold(true).Render(formatCount(item.Value))
		return fmt.Sprintf("  %s %s%s  %s", labelRendered, bar, track, value)
	})
	return strings.Join(lines, "\n")
}
