package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statdeck/statdeck/internal/cache"
	"github.com/statdeck/statdeck/internal/config"
	"github.com/statdeck/statdeck/internal/core"
)

func newStatsCommand(cfg config.Config) *cobra.Command {
	var rangeName, siteID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print summary stats for a website without the TUI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rangeName == "" {
				rangeName = cfg.DefaultRange
			}
			preset, err := core.ParsePreset(rangeName)
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, presetList())
			}
			r := core.PresetRange(preset)

			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			sites, err := sess.sites(cmd.Context())
			if err != nil {
				return err
			}
			site, err := pickSite(sites, siteID)
			if err != nil {
				return err
			}

			key := cache.Key{AccountID: sess.account.ID, Kind: cache.KindStats, EntityID: site.ID, RangeID: r.ID()}
			res, err := cache.Fetch(cmd.Context(), sess.store, key, func(ctx context.Context) (core.Stats, error) {
				return sess.provider.Stats(ctx, site.ID, r)
			})
			if err != nil {
				return err
			}

			printStats(site, preset, res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&rangeName, "range", "r", "", "date range preset")
	cmd.Flags().StringVarP(&siteID, "site", "s", "", "website ID or domain (defaults to the first site)")
	return cmd
}

func pickSite(sites []core.Website, wanted string) (core.Website, error) {
	if len(sites) == 0 {
		return core.Website{}, fmt.Errorf("account has no websites")
	}
	if wanted == "" {
		return sites[0], nil
	}
	for _, site := range sites {
		if site.ID == wanted || site.Domain == wanted {
			return site, nil
		}
	}
	return core.Website{}, fmt.Errorf("no website matching %q", wanted)
}

func printStats(site core.Website, preset core.RangePreset, res cache.Result[core.Stats]) {
	fmt.Printf("%s (%s), %s\n", site.Name, site.Domain, preset.Label())
	if res.Offline {
		fmt.Printf("  (offline, cached at %s)\n", res.CapturedAt.Format("2006-01-02 15:04"))
	}
	s := res.Data
	fmt.Printf("  Visitors     %8d  %+d\n", s.Visitors.Value, s.Visitors.Change)
	fmt.Printf("  Pageviews    %8d  %+d\n", s.Pageviews.Value, s.Pageviews.Change)
	fmt.Printf("  Visits       %8d  %+d\n", s.Visits.Value, s.Visits.Change)
	fmt.Printf("  Bounce rate  %7.0f%%\n", s.BounceRate())
	fmt.Printf("  Avg visit    %7.0fs\n", s.AvgSessionDuration())
}

func presetList() string {
	names := make([]string, len(core.ValidPresets))
	for i, p := range core.ValidPresets {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
