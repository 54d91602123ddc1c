package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/statdeck/statdeck/internal/config"
	"github.com/statdeck/statdeck/internal/core"
	"github.com/statdeck/statdeck/internal/dashboard"
)

// DataSource is the slice of the dashboard aggregator the model needs.
type DataSource interface {
	Cached(ctx context.Context, sites []core.Website, r core.DateRange) map[string]dashboard.Card
	Refresh(ctx context.Context, sites []core.Website, r core.DateRange) (dashboard.Snapshot, error)
}

// BreakdownFetcher loads one breakdown table for the detail screen.
type BreakdownFetcher func(ctx context.Context, siteID string, r core.DateRange, d core.Dimension) ([]core.MetricItem, error)

type screen int

const (
	screenTiles screen = iota
	screenDetail
)

type tickMsg time.Time

type snapshotMsg struct {
	snap dashboard.Snapshot
	err  error
}

type breakdownMsg struct {
	siteID    string
	dimension core.Dimension
	items     []core.MetricItem
	err       error
}

var detailDimensions = []core.Dimension{
	core.DimensionPage,
	core.DimensionReferrer,
	core.DimensionCountry,
	core.DimensionDevice,
	core.DimensionBrowser,
}

type Model struct {
	source    DataSource
	breakdown BreakdownFetcher
	sites     []core.Website

	accountName string
	rangeIdx    int
	cards       map[string]dashboard.Card
	offline     bool
	refreshing  bool
	lastErr     error

	screen       screen
	selected     int
	dimensionIdx int
	items        []core.MetricItem

	width        int
	height       int
	refreshEvery time.Duration
}

func NewModel(source DataSource, breakdown BreakdownFetcher, sites []core.Website, accountName string, cfg config.Config) Model {
	SetTheme(cfg.Theme)
	rangeIdx := 0
	if preset, err := core.ParsePreset(cfg.DefaultRange); err == nil {
		if i := indexOfPreset(preset); i >= 0 {
			rangeIdx = i
		}
	}
	return Model{
		source:       source,
		breakdown:    breakdown,
		sites:        sites,
		accountName:  accountName,
		rangeIdx:     rangeIdx,
		cards:        source.Cached(context.Background(), sites, core.PresetRange(core.ValidPresets[rangeIdx])),
		refreshEvery: time.Duration(cfg.UI.RefreshIntervalSeconds) * time.Second,
	}
}

func indexOfPreset(p core.RangePreset) int {
	for i, candidate := range core.ValidPresets {
		if candidate == p {
			return i
		}
	}
	return -1
}

func (m Model) dateRange() core.DateRange {
	return core.PresetRange(core.ValidPresets[m.rangeIdx])
}

func (m Model) selectedSite() (core.Website, bool) {
	if m.selected < 0 || m.selected >= len(m.sites) {
		return core.Website{}, false
	}
	return m.sites[m.selected], true
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refreshCmd() tea.Cmd {
	source, sites, r := m.source, m.sites, m.dateRange()
	return func() tea.Msg {
		snap, err := source.Refresh(context.Background(), sites, r)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) breakdownCmd() tea.Cmd {
	site, ok := m.selectedSite()
	if !ok || m.breakdown == nil {
		return nil
	}
	fetch, r, d := m.breakdown, m.dateRange(), detailDimensions[m.dimensionIdx]
	return func() tea.Msg {
		items, err := fetch(context.Background(), site.ID, r, d)
		return breakdownMsg{siteID: site.ID, dimension: d, items: items, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		if !m.refreshing {
			m.refreshing = true
			cmds = append(cmds, m.refreshCmd())
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.refreshing = false
		if msg.err != nil {
			if !errors.Is(msg.err, dashboard.ErrStale) {
				m.lastErr = msg.err
			}
			return m, nil
		}
		m.lastErr = nil
		m.cards = msg.snap.Cards
		m.offline = msg.snap.Offline
		return m, nil

	case breakdownMsg:
		site, ok := m.selectedSite()
		if !ok || msg.siteID != site.ID || msg.dimension != detailDimensions[m.dimensionIdx] {
			return m, nil
		}
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.items = msg.items
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		m.refreshing = true
		return m, m.refreshCmd()

	case "]", "tab":
		return m.setRange((m.rangeIdx + 1) % len(core.ValidPresets))

	case "[", "shift+tab":
		return m.setRange((m.rangeIdx + len(core.ValidPresets) - 1) % len(core.ValidPresets))

	case "right", "l", "down", "j":
		if m.screen == screenTiles && m.selected < len(m.sites)-1 {
			m.selected++
		}
		return m, nil

	case "left", "h", "up", "k":
		if m.screen == screenTiles && m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "enter":
		if m.screen == screenTiles {
			if _, ok := m.selectedSite(); ok {
				m.screen = screenDetail
				m.items = nil
				return m, m.breakdownCmd()
			}
		}
		return m, nil

	case "esc":
		if m.screen == screenDetail {
			m.screen = screenTiles
			m.items = nil
		}
		return m, nil

	case "d":
		if m.screen == screenDetail {
			m.dimensionIdx = (m.dimensionIdx + 1) % len(detailDimensions)
			m.items = nil
			return m, m.breakdownCmd()
		}
		return m, nil

	case "t":
		name := CycleTheme()
		return m, func() tea.Msg {
			_ = config.SaveTheme(name)
			return nil
		}
	}
	return m, nil
}

func (m Model) setRange(idx int) (tea.Model, tea.Cmd) {
	m.rangeIdx = idx
	m.refreshing = true
	m.items = nil
	m.cards = m.source.Cached(context.Background(), m.sites, m.dateRange())
	preset := core.ValidPresets[idx]
	cmds := []tea.Cmd{m.refreshCmd(), func() tea.Msg {
		_ = config.SaveDefaultRange(preset)
		return nil
	}}
	if m.screen == screenDetail {
		cmds = append(cmds, m.breakdownCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	switch m.screen {
	case screenDetail:
		b.WriteString(m.detailView())
	default:
		b.WriteString(renderTileGrid(m.sites, m.cards, m.selected))
	}

	b.WriteString("\n")
	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("  " + m.lastErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) headerView() string {
	parts := []string{
		headerBrandStyle.Render("statdeck"),
		labelStyle.Render(m.accountName),
		headerStyle.Render(core.ValidPresets[m.rangeIdx].Label()),
	}
	if m.offline {
		parts = append(parts, offlineStyle.Render("⚠ offline, showing cached data"))
	}
	if m.refreshing {
		parts = append(parts, dimStyle.Render("refreshing…"))
	}
	return "  " + strings.Join(parts, dimStyle.Render("  │  "))
}

func (m Model) detailView() string {
	site, ok := m.selectedSite()
	if !ok {
		return dimStyle.Render("  No site selected")
	}
	card, hasCard := m.cards[site.ID]

	var b strings.Builder
	b.WriteString("  " + headerStyle.Render(site.Name) + "  " + dimStyle.Render(site.Domain) + "\n\n")

	if hasCard && card.Stats != nil {
		s := card.Stats
		rows := []string{
			statCell("Visitors", formatCount(s.Visitors.Value), formatChange(s.Visitors)),
			statCell("Pageviews", formatCount(s.Pageviews.Value), formatChange(s.Pageviews)),
			statCell("Visits", formatCount(s.Visits.Value), formatChange(s.Visits)),
			statCell("Bounce rate", fmt.Sprintf("%.0f%%", s.BounceRate()), ""),
			statCell("Avg visit", formatDuration(int(s.AvgSessionDuration())), ""),
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rows...))
		b.WriteString("\n\n")
	}

	chartWidth := m.width - 6
	if chartWidth < 20 {
		chartWidth = 60
	}
	b.WriteString(RenderDetailChart(cardSeries(card, hasCard), chartWidth, 8))
	b.WriteString("\n\n")

	b.WriteString("  " + headerStyle.Render("Top "+dimensionLabel(detailDimensions[m.dimensionIdx])) + "\n")
	b.WriteString(RenderBreakdown(lo.Subset(m.items, 0, 10), 24, 28))
	return b.String()
}

func cardSeries(card dashboard.Card, ok bool) []core.ChartPoint {
	if !ok {
		return nil
	}
	return card.Sparkline
}

func statCell(label, value, change string) string {
	cell := labelStyle.Render(label) + "\n" + valueStyle.Bold(true).Render(value)
	if change != "" {
		cell += " " + change
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(cell)
}

func dimensionLabel(d core.Dimension) string {
	switch d {
	case core.DimensionPage:
		return "Pages"
	case core.DimensionReferrer:
		return "Referrers"
	case core.DimensionCountry:
		return "Countries"
	case core.DimensionDevice:
		return "Devices"
	case core.DimensionBrowser:
		return "Browsers"
	default:
		return string(d)
	}
}

func (m Model) helpView() string {
	keys := [][2]string{
		{"[/]", "range"},
		{"←/→", "site"},
		{"enter", "detail"},
		{"d", "dimension"},
		{"r", "refresh"},
		{"t", "theme"},
		{"q", "quit"},
	}
	parts := lo.Map(keys, func(k [2]string, _ int) string {
		return helpKeyStyle.Render(k[0]) + helpStyle.Render(" "+k[1])
	})
	return "  " + strings.Join(parts, helpStyle.Render("  ·  "))
}
