package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/statdeck/statdeck/internal/core"
	"github.com/statdeck/statdeck/internal/dashboard"
)

const (
	tileInnerWidth = 34
	tilesPerRow    = 2
)

// renderTile draws one site card. A card whose stats fetch failed renders
// placeholders rather than collapsing the tile.
func renderTile(card dashboard.Card, selected bool) string {
	var b strings.Builder

	name := card.Website.Name
	if name == "" {
		name = card.Website.Domain
	}
	b.WriteString(fitWidth(headerStyle.Render(name), tileInnerWidth))
	b.WriteString("\n")
	b.WriteString(fitWidth(dimStyle.Render(card.Website.Domain), tileInnerWidth))
	b.WriteString("\n")

	if card.Active != nil {
		b.WriteString(liveStyle.Render("● " + formatCount(*card.Active)))
		b.WriteString(labelStyle.Render(" online"))
	} else {
		b.WriteString(dimStyle.Render("● –"))
	}
	if card.Offline {
		b.WriteString("  " + offlineStyle.Render("offline"))
	}
	b.WriteString("\n\n")

	if card.Stats != nil {
		b.WriteString(metricRow("Visitors", card.Stats.Visitors))
		b.WriteString(metricRow("Views", card.Stats.Pageviews))
		b.WriteString(metricRow("Visits", card.Stats.Visits))
	} else {
		b.WriteString(dimStyle.Render("  no data") + "\n\n\n")
	}

	b.WriteString("\n")
	if spark := RenderSparkline(card.Sparkline, tileInnerWidth, colorAccent); spark != "" {
		b.WriteString(spark)
	} else {
		b.WriteString(dimStyle.Render(strings.Repeat("▁", tileInnerWidth)))
	}

	style := tileStyle
	if selected {
		style = tileSelectedStyle
	}
	return style.Width(tileInnerWidth + 2).Render(b.String())
}

func metricRow(label string, mv core.MetricValue) string {
	left := labelStyle.Render(fmt.Sprintf("%-9s", label))
	value := valueStyle.Bold(true).Render(fmt.Sprintf("%7s", formatCount(mv.Value)))
	return fmt.Sprintf("%s%s  %s\n", left, value, formatChange(mv))
}

// renderTileGrid lays cards out row by row in site order.
func renderTileGrid(sites []core.Website, cards map[string]dashboard.Card, selected int) string {
	if len(sites) == 0 {
		return dimStyle.Render("\n  No sites yet. Run `statdeck sites add` or log in to a server with websites.\n")
	}

	var rows []string
	for start := 0; start < len(sites); start += tilesPerRow {
		end := start + tilesPerRow
		if end > len(sites) {
			end = len(sites)
		}
		tiles := make([]string, 0, tilesPerRow)
		for i := start; i < end; i++ {
			card, ok := cards[sites[i].ID]
			if !ok {
				card = dashboard.Card{Website: sites[i]}
			}
			tiles = append(tiles, renderTile(card, i == selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	return strings.Join(rows, "\n")
}
