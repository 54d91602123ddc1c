package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statdeck/statdeck/internal/compare"
	"github.com/statdeck/statdeck/internal/core"
)

func newCompareCommand() *cobra.Command {
	var siteID, metricName string

	cmd := &cobra.Command{
		Use:   "compare <range-a> <range-b>",
		Short: "Compare a website's stats across two date ranges",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			presetA, err := core.ParsePreset(args[0])
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, presetList())
			}
			presetB, err := core.ParsePreset(args[1])
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, presetList())
			}

			primary := core.MetricVisitors
			if metricName != "" {
				if primary, err = core.ParseMetric(metricName); err != nil {
					return err
				}
			}
			metrics := [2]core.Metric{primary, core.MetricPageviews}
			if primary == core.MetricPageviews {
				metrics[1] = core.MetricVisitors
			}

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

			cmp, err := compare.New(sess.provider, sess.store, sess.account.ID).
				Compare(cmd.Context(), site, metrics, core.PresetRange(presetA), core.PresetRange(presetB))
			if err != nil {
				return err
			}

			printComparison(cmp, presetA, presetB)
			return nil
		},
	}
	cmd.Flags().StringVarP(&siteID, "site", "s", "", "website ID or domain (defaults to the first site)")
	cmd.Flags().StringVarP(&metricName, "metric", "m", "", "primary metric for the series (default visitors)")
	return cmd
}

func printComparison(cmp compare.Comparison, a, b core.RangePreset) {
	fmt.Printf("%s (%s)\n", cmp.Website.Name, cmp.Website.Domain)
	if cmp.A.Offline || cmp.B.Offline {
		fmt.Println("  (offline, showing cached data)")
	}

	fmt.Printf("%-14s %14s %14s\n", "", a.Label(), b.Label())
	row := func(label string, av, bv core.MetricValue) {
		fmt.Printf("%-14s %14d %14d\n", label, av.Value, bv.Value)
	}
	row("Visitors", cmp.A.Stats.Visitors, cmp.B.Stats.Visitors)
	row("Pageviews", cmp.A.Stats.Pageviews, cmp.B.Stats.Pageviews)
	row("Visits", cmp.A.Stats.Visits, cmp.B.Stats.Visits)
	fmt.Printf("%-14s %13.0f%% %13.0f%%\n", "Bounce rate", cmp.A.Stats.BounceRate(), cmp.B.Stats.BounceRate())
	fmt.Printf("%-14s %13.0fs %13.0fs\n", "Avg visit", cmp.A.Stats.AvgSessionDuration(), cmp.B.Stats.AvgSessionDuration())

	for slot, metric := range cmp.Metrics {
		fmt.Printf("\n%s, %d vs %d buckets\n", metric, len(cmp.A.Series[slot]), len(cmp.B.Series[slot]))
	}
}
