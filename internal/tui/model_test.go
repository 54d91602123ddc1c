package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/statdeck/statdeck/internal/config"
	"github.com/statdeck/statdeck/internal/core"
	"github.com/statdeck/statdeck/internal/dashboard"
)

type fakeSource struct {
	cached    map[string]dashboard.Card
	snapshot  dashboard.Snapshot
	err       error
	refreshes int
}

func (f *fakeSource) Cached(context.Context, []core.Website, core.DateRange) map[string]dashboard.Card {
	return f.cached
}

func (f *fakeSource) Refresh(context.Context, []core.Website, core.DateRange) (dashboard.Snapshot, error) {
	f.refreshes++
	return f.snapshot, f.err
}

func testSites() []core.Website {
	return []core.Website{
		{ID: "s1", Name: "Blog", Domain: "blog.example.com"},
		{ID: "s2", Name: "Shop", Domain: "shop.example.com"},
	}
}

func testModel(source DataSource) Model {
	return NewModel(source, nil, testSites(), "work", config.DefaultConfig())
}

func key(s string) tea.KeyMsg {
	if s == "tab" {
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRangeCycling(t *testing.T) {
	source := &fakeSource{}
	m := testModel(source)

	start := m.rangeIdx
	updated, _ := m.Update(key("]"))
	m = updated.(Model)
	if m.rangeIdx != (start+1)%len(core.ValidPresets) {
		t.Errorf("rangeIdx = %d after ], want %d", m.rangeIdx, (start+1)%len(core.ValidPresets))
	}

	updated, _ = m.Update(key("["))
	m = updated.(Model)
	if m.rangeIdx != start {
		t.Errorf("rangeIdx = %d after [, want %d", m.rangeIdx, start)
	}
}

func TestDefaultRangeFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DefaultRange = string(core.RangeThisMonth)
	m := NewModel(&fakeSource{}, nil, testSites(), "work", cfg)

	if core.ValidPresets[m.rangeIdx] != core.RangeThisMonth {
		t.Errorf("initial preset = %s, want thismonth", core.ValidPresets[m.rangeIdx])
	}
}

func TestSnapshotApplied(t *testing.T) {
	m := testModel(&fakeSource{})

	active := 3
	snap := dashboard.Snapshot{
		Cards: map[string]dashboard.Card{
			"s1": {
				Website: testSites()[0],
				Stats:   &core.Stats{Visitors: core.MetricValue{Value: 1200, Change: 40}},
				Active:  &active,
			},
		},
	}
	updated, _ := m.Update(snapshotMsg{snap: snap})
	m = updated.(Model)

	if m.refreshing {
		t.Error("still marked refreshing after snapshot")
	}
	view := m.View()
	if !strings.Contains(view, "1.2k") {
		t.Errorf("view missing visitor count:\n%s", view)
	}
	if !strings.Contains(view, "blog.example.com") {
		t.Error("view missing site domain")
	}
}

func TestStaleSnapshotIgnored(t *testing.T) {
	m := testModel(&fakeSource{})
	seed := dashboard.Snapshot{
		Cards: map[string]dashboard.Card{
			"s1": {Website: testSites()[0], Stats: &core.Stats{Visitors: core.MetricValue{Value: 7}}},
		},
	}
	updated, _ := m.Update(snapshotMsg{snap: seed})
	m = updated.(Model)

	updated, _ = m.Update(snapshotMsg{err: dashboard.ErrStale})
	m = updated.(Model)

	if m.lastErr != nil {
		t.Errorf("stale refresh surfaced as error: %v", m.lastErr)
	}
	if m.cards["s1"].Stats == nil {
		t.Error("stale refresh clobbered cards")
	}
}

func TestOfflineBadgeShown(t *testing.T) {
	m := testModel(&fakeSource{})
	updated, _ := m.Update(snapshotMsg{snap: dashboard.Snapshot{Offline: true, Cards: map[string]dashboard.Card{}}})
	m = updated.(Model)

	if !strings.Contains(m.View(), "offline") {
		t.Error("offline badge missing from header")
	}
}

func TestDetailNavigation(t *testing.T) {
	m := testModel(&fakeSource{})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.screen != screenDetail {
		t.Fatal("enter did not open detail screen")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.screen != screenTiles {
		t.Fatal("esc did not return to tiles")
	}
}

func TestBreakdownRejectsMismatchedSite(t *testing.T) {
	m := testModel(&fakeSource{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	updated, _ = m.Update(breakdownMsg{
		siteID:    "someone-else",
		dimension: detailDimensions[m.dimensionIdx],
		items:     []core.MetricItem{{Label: "/", Value: 10}},
	})
	m = updated.(Model)
	if m.items != nil {
		t.Error("breakdown for another site was applied")
	}
}

func TestManualRefreshTriggersFetch(t *testing.T) {
	source := &fakeSource{}
	m := testModel(source)

	_, cmd := m.Update(key("r"))
	if cmd == nil {
		t.Fatal("r produced no command")
	}
	if msg := cmd(); msg == nil {
		t.Fatal("refresh command produced no message")
	} else if _, ok := msg.(snapshotMsg); !ok {
		t.Fatalf("refresh command produced %T, want snapshotMsg", msg)
	}
	if source.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", source.refreshes)
	}
}

func TestRangeCyclingPersistsDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	m := testModel(&fakeSource{})
	start := m.rangeIdx
	updated, cmd := m.Update(key("]"))
	m = updated.(Model)

	// Drain the batch so the save command actually runs.
	if cmd != nil {
		if batch, ok := cmd().(tea.BatchMsg); ok {
			for _, sub := range batch {
				if sub != nil {
					sub()
				}
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := string(core.ValidPresets[(start+1)%len(core.ValidPresets)])
	if cfg.DefaultRange != want {
		t.Errorf("persisted default range = %q, want %q", cfg.DefaultRange, want)
	}
}
