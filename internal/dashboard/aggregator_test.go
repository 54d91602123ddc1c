package dashboard

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/statdeck/statdeck/internal/cache"
	"github.com/statdeck/statdeck/internal/core"
)

type fakeProvider struct {
	mu        sync.Mutex
	stats     map[string]core.Stats
	active    map[string]int
	series    map[string][]core.ChartPoint
	statsErr  error
	activeErr error
	seriesErr error
	statsCall atomic.Int32
	block     chan struct{}
}

func (f *fakeProvider) Kind() core.ProviderKind           { return core.ProviderUmami }
func (f *fakeProvider) Authenticate(context.Context) error { return nil }

func (f *fakeProvider) Websites(context.Context) ([]core.Website, error) {
	return nil, nil
}

func (f *fakeProvider) Stats(ctx context.Context, siteID string, _ core.DateRange) (core.Stats, error) {
	if f.statsCall.Add(1) == 1 && f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return core.Stats{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return core.Stats{}, f.statsErr
	}
	return f.stats[siteID], nil
}

func (f *fakeProvider) TimeSeries(_ context.Context, siteID string, _ core.DateRange, _ core.Metric) ([]core.ChartPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seriesErr != nil {
		return nil, f.seriesErr
	}
	return f.series[siteID], nil
}

func (f *fakeProvider) ActiveVisitors(_ context.Context, siteID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activeErr != nil {
		return 0, f.activeErr
	}
	return f.active[siteID], nil
}

func (f *fakeProvider) Breakdown(context.Context, string, core.DateRange, core.Dimension) ([]core.MetricItem, error) {
	return nil, nil
}

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sites(ids ...string) []core.Website {
	out := make([]core.Website, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.Website{ID: id, Name: id, Domain: id + ".example.com"})
	}
	return out
}

func TestRefreshAssemblesCards(t *testing.T) {
	provider := &fakeProvider{
		stats: map[string]core.Stats{
			"a": {Visitors: core.MetricValue{Value: 100, Change: 10}},
			"b": {Visitors: core.MetricValue{Value: 5}},
		},
		active: map[string]int{"a": 7, "b": 0},
		series: map[string][]core.ChartPoint{
			"a": {{Time: time.Now().Truncate(time.Hour), Value: 3}},
		},
	}
	agg := New(provider, newTestStore(t), "acct-1")

	snap, err := agg.Refresh(context.Background(), sites("a", "b"), core.PresetRange(core.RangeToday))
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if len(snap.Cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(snap.Cards))
	}
	a := snap.Cards["a"]
	if a.Stats == nil || a.Stats.Visitors.Value != 100 {
		t.Errorf("card a stats = %+v", a.Stats)
	}
	if a.Active == nil || *a.Active != 7 {
		t.Errorf("card a active = %v", a.Active)
	}
	if len(a.Sparkline) == 0 {
		t.Error("card a has no sparkline")
	}
	if snap.Offline {
		t.Error("fresh snapshot flagged offline")
	}
}

func TestRefreshIsolatesFailures(t *testing.T) {
	provider := &fakeProvider{
		stats:     map[string]core.Stats{"a": {Pageviews: core.MetricValue{Value: 42}}},
		active:    map[string]int{"a": 1},
		seriesErr: &core.StatusError{Code: 500},
	}
	agg := New(provider, newTestStore(t), "acct-1")

	snap, err := agg.Refresh(context.Background(), sites("a"), core.PresetRange(core.RangeLast7Days))
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	card := snap.Cards["a"]
	if card.Stats == nil || card.Stats.Pageviews.Value != 42 {
		t.Errorf("stats lost to sibling failure: %+v", card.Stats)
	}
	if card.Sparkline != nil {
		t.Errorf("sparkline = %v, want nil after failed fetch", card.Sparkline)
	}
}

func TestRefreshServesCacheWhenOffline(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{
		stats:  map[string]core.Stats{"a": {Visitors: core.MetricValue{Value: 9}}},
		active: map[string]int{"a": 2},
	}
	agg := New(provider, store, "acct-1")
	r := core.PresetRange(core.RangeLast7Days)

	if _, err := agg.Refresh(context.Background(), sites("a"), r); err != nil {
		t.Fatalf("warm refresh error: %v", err)
	}

	provider.mu.Lock()
	provider.statsErr = &offlineErr{}
	provider.activeErr = &offlineErr{}
	provider.seriesErr = &offlineErr{}
	provider.mu.Unlock()

	snap, err := agg.Refresh(context.Background(), sites("a"), r)
	if err != nil {
		t.Fatalf("offline refresh error: %v", err)
	}
	card := snap.Cards["a"]
	if card.Stats == nil || card.Stats.Visitors.Value != 9 {
		t.Errorf("cached stats not served: %+v", card.Stats)
	}
	if !card.Offline || !snap.Offline {
		t.Error("offline flag not set on cached card")
	}
}

func TestStaleRefreshDiscarded(t *testing.T) {
	block := make(chan struct{})
	provider := &fakeProvider{
		stats:  map[string]core.Stats{"a": {Visitors: core.MetricValue{Value: 1}}},
		active: map[string]int{"a": 0},
		block:  block,
	}
	agg := New(provider, newTestStore(t), "acct-1")
	r := core.PresetRange(core.RangeToday)

	done := make(chan error, 1)
	go func() {
		_, err := agg.Refresh(context.Background(), sites("a"), r)
		done <- err
	}()

	for provider.statsCall.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	if _, err := agg.Refresh(context.Background(), sites("a"), r); err != nil {
		t.Fatalf("newer refresh error: %v", err)
	}
	close(block)

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("superseded refresh error = %v, want ErrStale", err)
	}
}

func TestCachedPaintsBeforeRefresh(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{
		stats:  map[string]core.Stats{"a": {Visits: core.MetricValue{Value: 33}}},
		active: map[string]int{"a": 4},
	}
	agg := New(provider, store, "acct-1")
	r := core.PresetRange(core.RangeLast30Days)

	if cards := agg.Cached(context.Background(), sites("a"), r); cards["a"].Stats != nil {
		t.Fatal("cold cache produced stats")
	}
	if _, err := agg.Refresh(context.Background(), sites("a"), r); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	cards := agg.Cached(context.Background(), sites("a"), r)
	if cards["a"].Stats == nil || cards["a"].Stats.Visits.Value != 33 {
		t.Errorf("cached stats = %+v", cards["a"].Stats)
	}
	if cards["a"].Active == nil || *cards["a"].Active != 4 {
		t.Errorf("cached active = %v", cards["a"].Active)
	}
}

type offlineErr struct{}

func (*offlineErr) Error() string   { return "dial tcp: connection refused" }
func (*offlineErr) Timeout() bool   { return true }
func (*offlineErr) Temporary() bool { return true }
