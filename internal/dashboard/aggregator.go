// Package dashboard fans out the per-site fetches one dashboard refresh
// needs and assembles per-site cards. Each site's three fetches (stats,
// realtime count, sparkline) run concurrently and fail independently: a
// broken fetch degrades one card, never the whole board.
package dashboard

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/statdeck/statdeck/internal/cache"
	"github.com/statdeck/statdeck/internal/core"
)

// ErrStale marks a refresh that was superseded by a newer one while in
// flight. Callers drop the result instead of applying it.
var ErrStale = errors.New("refresh superseded")

// Card is one site's slice of the dashboard. Nil fields mean that fetch
// failed and no cached copy existed.
type Card struct {
	Website   core.Website
	Stats     *core.Stats
	Active    *int
	Sparkline []core.ChartPoint
	Offline   bool
}

// Snapshot is the result of one refresh across all sites.
type Snapshot struct {
	Generation uint64
	Range      core.DateRange
	Cards      map[string]Card
	Offline    bool
}

type Aggregator struct {
	provider  core.Provider
	store     *cache.Store
	accountID string
	metric    core.Metric
	now       func() time.Time

	generation atomic.Uint64
}

func New(provider core.Provider, store *cache.Store, accountID string) *Aggregator {
	return &Aggregator{
		provider:  provider,
		store:     store,
		accountID: accountID,
		metric:    core.MetricVisitors,
		now:       time.Now,
	}
}

// Cached assembles cards from the cache only, for instant paint before
// Refresh completes. Sites without cached stats get a bare card.
func (a *Aggregator) Cached(ctx context.Context, sites []core.Website, r core.DateRange) map[string]Card {
	cards := make(map[string]Card, len(sites))
	for _, site := range sites {
		card := Card{Website: site}
		if stats, _, ok := cache.Peek[core.Stats](ctx, a.store, a.key(cache.KindStats, site.ID, r)); ok {
			card.Stats = &stats
		}
		if active, _, ok := cache.Peek[int](ctx, a.store, cache.Key{AccountID: a.accountID, Kind: cache.KindRealtime, EntityID: site.ID}); ok {
			card.Active = &active
		}
		if series, _, ok := cache.Peek[[]core.ChartPoint](ctx, a.store, a.key(cache.KindSeries, site.ID, r)); ok {
			card.Sparkline = series
		}
		cards[site.ID] = card
	}
	return cards
}

// Refresh fetches every site's card concurrently. A refresh started while
// an older one is still in flight wins: the older one returns ErrStale
// when it finally drains so late completions cannot overwrite new state.
func (a *Aggregator) Refresh(ctx context.Context, sites []core.Website, r core.DateRange) (Snapshot, error) {
	gen := a.generation.Add(1)

	var wg sync.WaitGroup
	results := make(chan Card, len(sites))

	for _, site := range sites {
		wg.Add(1)
		go func(site core.Website) {
			defer wg.Done()
			results <- a.fetchCard(ctx, site, r)
		}(site)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	snapshot := Snapshot{Generation: gen, Range: r, Cards: make(map[string]Card, len(sites))}
	for card := range results {
		snapshot.Cards[card.Website.ID] = card
		if card.Offline {
			snapshot.Offline = true
		}
	}

	if a.generation.Load() != gen {
		return Snapshot{}, ErrStale
	}
	return snapshot, nil
}

func (a *Aggregator) fetchCard(ctx context.Context, site core.Website, r core.DateRange) Card {
	card := Card{Website: site}

	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		res, err := cache.Fetch(ctx, a.store, a.key(cache.KindStats, site.ID, r), func(ctx context.Context) (core.Stats, error) {
			return a.provider.Stats(ctx, site.ID, r)
		})
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			logFetchErr("stats", site.ID, err)
			return
		}
		card.Stats = &res.Data
		card.Offline = card.Offline || res.Offline
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		key := cache.Key{AccountID: a.accountID, Kind: cache.KindRealtime, EntityID: site.ID}
		res, err := cache.Fetch(ctx, a.store, key, func(ctx context.Context) (int, error) {
			return a.provider.ActiveVisitors(ctx, site.ID)
		})
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			logFetchErr("active visitors", site.ID, err)
			return
		}
		card.Active = &res.Data
		card.Offline = card.Offline || res.Offline
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		res, err := cache.Fetch(ctx, a.store, a.key(cache.KindSeries, site.ID, r), func(ctx context.Context) ([]core.ChartPoint, error) {
			raw, err := a.provider.TimeSeries(ctx, site.ID, r, a.metric)
			if err != nil {
				return nil, err
			}
			return core.FillGaps(raw, r.Resolve(a.now()), a.now()), nil
		})
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			logFetchErr("sparkline", site.ID, err)
			return
		}
		card.Sparkline = res.Data
		card.Offline = card.Offline || res.Offline
	}()

	wg.Wait()
	return card
}

func (a *Aggregator) key(kind, siteID string, r core.DateRange) cache.Key {
	return cache.Key{AccountID: a.accountID, Kind: kind, EntityID: siteID, RangeID: r.ID()}
}

func logFetchErr(what, siteID string, err error) {
	if core.IsCancelled(err) {
		return
	}
	log.Printf("dashboard: %s fetch for %s: %v", what, siteID, err)
}
