package compare

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/statdeck/statdeck/internal/cache"
	"github.com/statdeck/statdeck/internal/core"
)

type fakeProvider struct {
	mu     sync.Mutex
	stats  map[string]core.Stats
	series map[string][]core.ChartPoint
	err    error
}

func (f *fakeProvider) Kind() core.ProviderKind            { return core.ProviderPlausible }
func (f *fakeProvider) Authenticate(context.Context) error { return nil }

func (f *fakeProvider) Websites(context.Context) ([]core.Website, error) { return nil, nil }

func (f *fakeProvider) Stats(_ context.Context, _ string, r core.DateRange) (core.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return core.Stats{}, f.err
	}
	return f.stats[r.ID()], nil
}

func (f *fakeProvider) TimeSeries(_ context.Context, _ string, r core.DateRange, metric core.Metric) ([]core.ChartPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.series[r.ID()+"/"+string(metric)], nil
}

func (f *fakeProvider) ActiveVisitors(context.Context, string) (int, error) { return 0, nil }

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

var bothMetrics = [2]core.Metric{core.MetricVisitors, core.MetricPageviews}

func TestCompareTwoRanges(t *testing.T) {
	last7 := core.PresetRange(core.RangeLast7Days)
	last30 := core.PresetRange(core.RangeLast30Days)
	provider := &fakeProvider{
		stats: map[string]core.Stats{
			last7.ID():  {Visitors: core.MetricValue{Value: 70}},
			last30.ID(): {Visitors: core.MetricValue{Value: 300}},
		},
		series: map[string][]core.ChartPoint{
			last7.ID() + "/visitors":   {{Time: time.Now().AddDate(0, 0, -1), Value: 10}},
			last7.ID() + "/pageviews":  {{Time: time.Now().AddDate(0, 0, -1), Value: 40}},
			last30.ID() + "/visitors":  {{Time: time.Now().AddDate(0, 0, -2), Value: 20}},
			last30.ID() + "/pageviews": {{Time: time.Now().AddDate(0, 0, -2), Value: 80}},
		},
	}
	cmp, err := New(provider, newTestStore(t), "acct-1").
		Compare(context.Background(), core.Website{ID: "a"}, bothMetrics, last7, last30)
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}
	if cmp.A.Stats.Visitors.Value != 70 || cmp.B.Stats.Visitors.Value != 300 {
		t.Errorf("stats = %d / %d, want 70 / 300", cmp.A.Stats.Visitors.Value, cmp.B.Stats.Visitors.Value)
	}
	for slot := range bothMetrics {
		if len(cmp.A.Series[slot]) != 7 {
			t.Errorf("side A series[%d] length = %d, want 7", slot, len(cmp.A.Series[slot]))
		}
		if len(cmp.B.Series[slot]) != 30 {
			t.Errorf("side B series[%d] length = %d, want 30", slot, len(cmp.B.Series[slot]))
		}
	}
	sum := 0
	for _, p := range cmp.A.Series[1] {
		sum += p.Value
	}
	if sum != 40 {
		t.Errorf("side A pageviews sum = %d, want 40", sum)
	}
}

func TestCompareKeepsUnequalLengths(t *testing.T) {
	last7 := core.PresetRange(core.RangeLast7Days)
	thisYear := core.PresetRange(core.RangeThisYear)
	provider := &fakeProvider{}
	cmp, err := New(provider, newTestStore(t), "acct-1").
		Compare(context.Background(), core.Website{ID: "a"}, bothMetrics, last7, thisYear)
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}
	if len(cmp.A.Series[0]) != 7 {
		t.Errorf("day range filled to %d buckets, want 7", len(cmp.A.Series[0]))
	}
	if len(cmp.B.Series[0]) != 12 {
		t.Errorf("month range filled to %d buckets, want 12", len(cmp.B.Series[0]))
	}
}

func TestCompareAbortsOnError(t *testing.T) {
	provider := &fakeProvider{err: core.ErrUnauthorized}
	_, err := New(provider, newTestStore(t), "acct-1").
		Compare(context.Background(), core.Website{ID: "a"}, bothMetrics,
			core.PresetRange(core.RangeToday), core.PresetRange(core.RangeYesterday))
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("Compare() error = %v, want ErrUnauthorized", err)
	}
}

func TestCompareFlagsOfflineSide(t *testing.T) {
	store := newTestStore(t)
	last7 := core.PresetRange(core.RangeLast7Days)
	yesterday := core.PresetRange(core.RangeYesterday)
	provider := &fakeProvider{
		stats: map[string]core.Stats{
			last7.ID():     {Visitors: core.MetricValue{Value: 1}},
			yesterday.ID(): {Visitors: core.MetricValue{Value: 2}},
		},
	}
	comparer := New(provider, store, "acct-1")
	site := core.Website{ID: "a"}

	if _, err := comparer.Compare(context.Background(), site, bothMetrics, last7, yesterday); err != nil {
		t.Fatalf("warm Compare() error: %v", err)
	}

	provider.mu.Lock()
	provider.err = &offlineErr{}
	provider.mu.Unlock()

	cmp, err := comparer.Compare(context.Background(), site, bothMetrics, last7, yesterday)
	if err != nil {
		t.Fatalf("offline Compare() error: %v", err)
	}
	if !cmp.A.Offline || !cmp.B.Offline {
		t.Errorf("offline flags = %v / %v, want both true", cmp.A.Offline, cmp.B.Offline)
	}
	if cmp.A.Stats.Visitors.Value != 1 || cmp.B.Stats.Visitors.Value != 2 {
		t.Errorf("cached stats = %d / %d", cmp.A.Stats.Visitors.Value, cmp.B.Stats.Visitors.Value)
	}
}

type offlineErr struct{}

func (*offlineErr) Error() string   { return "dial tcp: connection refused" }
func (*offlineErr) Timeout() bool   { return true }
func (*offlineErr) Temporary() bool { return true }
