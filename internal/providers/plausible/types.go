package plausible

import (
	"fmt"
	"time"
)

// queryRequest is the body of the single flexible /api/v2/query endpoint.
// DateRange is either a named shortcut string or a [start, end] pair.
type queryRequest struct {
	SiteID     string   `json:"site_id"`
	Metrics    []string `json:"metrics"`
	DateRange  any      `json:"date_range"`
	Dimensions []string `json:"dimensions,omitempty"`
}

type queryResponse struct {
	Results []queryResult `json:"results"`
}

type queryResult struct {
	Metrics    []float64 `json:"metrics"`
	Dimensions []string  `json:"dimensions"`
}

// first returns the leading result row, or a zero row when the query
// matched nothing.
func (r queryResponse) first() queryResult {
	if len(r.Results) == 0 {
		return queryResult{}
	}
	return r.Results[0]
}

func (r queryResult) metric(i int) float64 {
	if i < 0 || i >= len(r.Metrics) {
		return 0
	}
	return r.Metrics[i]
}

func parseBucketTime(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		"2006-01",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized bucket time %q", s)
}
