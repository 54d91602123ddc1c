package umami

import (
	"fmt"
	"time"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type websitesEnvelope struct {
	Data     []websitePayload `json:"data"`
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

type websitePayload struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Domain  string     `json:"domain"`
	ShareID string     `json:"shareId"`
	TeamID  string     `json:"teamId"`
	ResetAt *time.Time `json:"resetAt"`
}

// statsPayload holds one aggregation window. Umami reports each metric as
// an object with a single value field.
type statsPayload struct {
	Pageviews metricCell `json:"pageviews"`
	Visitors  metricCell `json:"visitors"`
	Visits    metricCell `json:"visits"`
	Bounces   metricCell `json:"bounces"`
	TotalTime metricCell `json:"totaltime"`
}

type metricCell struct {
	Value float64 `json:"value"`
}

type pageviewsEnvelope struct {
	Pageviews []seriesPoint `json:"pageviews"`
	Sessions  []seriesPoint `json:"sessions"`
}

type seriesPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

type activeEnvelope struct {
	Visitors int `json:"visitors"`
}

type metricRow struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

// parseBucketTime accepts the timestamp spellings Umami emits depending on
// version and unit.
func parseBucketTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized bucket time %q", s)
}
