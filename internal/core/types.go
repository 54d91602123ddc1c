package core

import (
	"fmt"
	"time"
)

// ProviderKind identifies which backend an account talks to.
type ProviderKind string

const (
	ProviderUmami     ProviderKind = "umami"
	ProviderPlausible ProviderKind = "plausible"
)

func (k ProviderKind) Label() string {
	switch k {
	case ProviderUmami:
		return "Umami"
	case ProviderPlausible:
		return "Plausible"
	default:
		return string(k)
	}
}

// Website is the canonical site shape both adapters produce. ID is a UUID
// for Umami and the literal domain for Plausible.
type Website struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Domain  string     `json:"domain"`
	ShareID string     `json:"share_id,omitempty"`
	TeamID  string     `json:"team_id,omitempty"`
	ResetAt *time.Time `json:"reset_at,omitempty"`
}

// MetricValue pairs a metric's current value with its absolute change
// versus the comparison period. Change is always current minus previous,
// never a pre-divided percentage.
type MetricValue struct {
	Value  int `json:"value"`
	Change int `json:"change"`
}

// Stats is the canonical aggregate for one site over one date range.
type Stats struct {
	Visitors  MetricValue `json:"visitors"`
	Pageviews MetricValue `json:"pageviews"`
	Visits    MetricValue `json:"visits"`
	Bounces   MetricValue `json:"bounces"`
	TotalTime MetricValue `json:"total_time"` // seconds
}

// BounceRate returns bounces/visits as a percentage, 0 when there were no
// visits.
func (s Stats) BounceRate() float64 {
	if s.Visits.Value == 0 {
		return 0
	}
	return float64(s.Bounces.Value) / float64(s.Visits.Value) * 100
}

// AvgSessionDuration returns total time per visit in seconds, 0 when there
// were no visits.
func (s Stats) AvgSessionDuration() float64 {
	if s.Visits.Value == 0 {
		return 0
	}
	return float64(s.TotalTime.Value) / float64(s.Visits.Value)
}

// ChartPoint is one bucket of a time series.
type ChartPoint struct {
	Time  time.Time `json:"time"`
	Value int       `json:"value"`
}

// MetricItem is one row of a categorical breakdown (top pages, referrers,
// countries, ...). Upstream ordering is not guaranteed.
type MetricItem struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Metric names one of the series a provider can chart.
type Metric string

const (
	MetricVisitors  Metric = "visitors"
	MetricPageviews Metric = "pageviews"
	MetricVisits    Metric = "visits"
	MetricBounces   Metric = "bounces"
	MetricTotalTime Metric = "totaltime"
)

// ValidMetrics lists the chartable metrics in display order.
var ValidMetrics = []Metric{
	MetricVisitors,
	MetricPageviews,
	MetricVisits,
	MetricBounces,
	MetricTotalTime,
}

func ParseMetric(s string) (Metric, error) {
	for _, m := range ValidMetrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Dimension names a breakdown axis. Adapters return an empty list for
// dimensions their backend cannot express.
type Dimension string

const (
	DimensionPage       Dimension = "page"
	DimensionReferrer   Dimension = "referrer"
	DimensionCountry    Dimension = "country"
	DimensionRegion     Dimension = "region"
	DimensionCity       Dimension = "city"
	DimensionDevice     Dimension = "device"
	DimensionBrowser    Dimension = "browser"
	DimensionOS         Dimension = "os"
	DimensionLanguage   Dimension = "language"
	DimensionScreenSize Dimension = "screen"
	DimensionEventName  Dimension = "event"
)
