// Package compare fetches the same site over two date ranges side by
// side: stats for both ranges plus two metrics' series per range. Each
// series is gap-filled against its own range, so the two sides may
// legitimately differ in length.
package compare

import (
	"context"
	"sync"
	"time"

	"github.com/statdeck/statdeck/internal/cache"
	"github.com/statdeck/statdeck/internal/core"
)

// Side is one range's half of a comparison. Series is indexed in the
// same order as Comparison.Metrics.
type Side struct {
	Range   core.DateRange
	Stats   core.Stats
	Series  [2][]core.ChartPoint
	Offline bool
}

// Comparison pairs two sides for one site.
type Comparison struct {
	Website core.Website
	Metrics [2]core.Metric
	A, B    Side
}

type Comparer struct {
	provider  core.Provider
	store     *cache.Store
	accountID string
	now       func() time.Time
}

func New(provider core.Provider, store *cache.Store, accountID string) *Comparer {
	return &Comparer{provider: provider, store: store, accountID: accountID, now: time.Now}
}

// Compare fetches site over both ranges: two stats calls and four series
// calls, all concurrent. The first fetch error aborts the comparison; a
// half-populated comparison reads as a lie, unlike a dashboard card with
// one gap.
func (c *Comparer) Compare(ctx context.Context, site core.Website, metrics [2]core.Metric, a, b core.DateRange) (Comparison, error) {
	cmp := Comparison{Website: site, Metrics: metrics, A: Side{Range: a}, B: Side{Range: b}}

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	offline := make(chan *Side, 6)

	run := func(side *Side, fn func(*Side) (bool, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wasOffline, err := fn(side)
			if err != nil {
				errs <- err
				return
			}
			if wasOffline {
				offline <- side
			}
		}()
	}

	for _, side := range []*Side{&cmp.A, &cmp.B} {
		run(side, func(s *Side) (bool, error) { return c.fillStats(ctx, site.ID, s) })
		for slot, metric := range metrics {
			run(side, func(s *Side) (bool, error) { return c.fillSeries(ctx, site.ID, metric, slot, s) })
		}
	}

	wg.Wait()
	close(errs)
	close(offline)
	if err := <-errs; err != nil {
		return Comparison{}, err
	}
	for side := range offline {
		side.Offline = true
	}
	return cmp, nil
}

func (c *Comparer) fillStats(ctx context.Context, siteID string, side *Side) (bool, error) {
	key := cache.Key{AccountID: c.accountID, Kind: cache.KindStats, EntityID: siteID, RangeID: side.Range.ID()}
	res, err := cache.Fetch(ctx, c.store, key, func(ctx context.Context) (core.Stats, error) {
		return c.provider.Stats(ctx, siteID, side.Range)
	})
	if err != nil {
		return false, err
	}
	side.Stats = res.Data
	return res.Offline, nil
}

func (c *Comparer) fillSeries(ctx context.Context, siteID string, metric core.Metric, slot int, side *Side) (bool, error) {
	key := cache.Key{
		AccountID: c.accountID,
		Kind:      cache.KindSeries,
		EntityID:  siteID + ":" + string(metric),
		RangeID:   side.Range.ID(),
	}
	res, err := cache.Fetch(ctx, c.store, key, func(ctx context.Context) ([]core.ChartPoint, error) {
		raw, err := c.provider.TimeSeries(ctx, siteID, side.Range, metric)
		if err != nil {
			return nil, err
		}
		return core.FillGaps(raw, side.Range.Resolve(c.now()), c.now()), nil
	})
	if err != nil {
		return false, err
	}
	side.Series[slot] = res.Data
	return res.Offline, nil
}
