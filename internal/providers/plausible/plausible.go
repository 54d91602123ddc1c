// Package plausible adapts the Plausible hosted API to the canonical
// provider contract. Auth is a static API key; everything except the
// realtime visitor count goes through one flexible query endpoint.
//
// Plausible reports bounce rate as a percentage and session duration as a
// per-visit average, so the adapter back-computes the absolute bounce
// count and total time to match the canonical Stats semantics.
package plausible

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/statdeck/statdeck/internal/core"
	"github.com/statdeck/statdeck/internal/providers/shared"
)

// DefaultBaseURL is the hosted service; self-hosted installs override it.
const DefaultBaseURL = "https://plausible.io"

const dateLayout = "2006-01-02"

// Client implements core.Provider against the Plausible API. Plausible has
// no server-side "list my sites" endpoint, so the client carries the
// account's locally remembered site list.
type Client struct {
	baseURL string
	apiKey  string
	sites   []string
	http    shared.HTTPClient
	now     func() time.Time
}

func New(serverURL, apiKey string, sites []string) *Client {
	if serverURL == "" {
		serverURL = DefaultBaseURL
	}
	return &Client{
		baseURL: serverURL,
		apiKey:  apiKey,
		sites:   sites,
		http:    http.DefaultClient,
		now:     time.Now,
	}
}

// NewWithClient is New with an injected HTTP client, for tests.
func NewWithClient(serverURL, apiKey string, sites []string, httpClient shared.HTTPClient) *Client {
	c := New(serverURL, apiKey, sites)
	c.http = httpClient
	return c
}

func (c *Client) Kind() core.ProviderKind {
	return core.ProviderPlausible
}

// ValidateKey checks an API key without naming a site: an empty query is
// malformed, so HTTP 400 proves the key was accepted while 401 means it
// was not. Returns the normalized server URL.
func ValidateKey(ctx context.Context, httpClient shared.HTTPClient, serverURL, apiKey string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("empty API key: %w", core.ErrInvalidCredentials)
	}
	if serverURL == "" {
		serverURL = DefaultBaseURL
	}
	normalized, err := shared.NormalizeServerURL(serverURL)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, shared.DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, normalized+"/api/v2/query", strings.NewReader("{}"))
	if err != nil {
		return "", fmt.Errorf("plausible: building validation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("plausible: key validation: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", core.ErrUnauthorized
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode < 300:
		return normalized, nil
	default:
		return "", &core.StatusError{Code: resp.StatusCode}
	}
}

func (c *Client) Authenticate(ctx context.Context) error {
	_, err := ValidateKey(ctx, c.http, c.baseURL, c.apiKey)
	return err
}

// Websites returns the locally remembered site set; there is no listing
// endpoint to ask.
func (c *Client) Websites(ctx context.Context) ([]core.Website, error) {
	sites := make([]core.Website, 0, len(c.sites))
	for _, domain := range c.sites {
		sites = append(sites, core.Website{ID: domain, Name: domain, Domain: domain})
	}
	return sites, nil
}

var statsMetrics = []string{"visitors", "pageviews", "visits", "bounce_rate", "visit_duration"}

func (c *Client) Stats(ctx context.Context, siteID string, r core.DateRange) (core.Stats, error) {
	rr := r.Resolve(c.now())

	current, err := c.statsWindow(ctx, siteID, rangeValue(r, rr))
	if err != nil {
		return core.Stats{}, err
	}
	previous, err := c.statsWindow(ctx, siteID, pairValue(rr.Previous()))
	if err != nil {
		return core.Stats{}, err
	}

	return core.Stats{
		Visitors:  diff(current.Visitors, previous.Visitors),
		Pageviews: diff(current.Pageviews, previous.Pageviews),
		Visits:    diff(current.Visits, previous.Visits),
		Bounces:   diff(current.Bounces, previous.Bounces),
		TotalTime: diff(current.TotalTime, previous.TotalTime),
	}, nil
}

// windowStats is one aggregation window after back-computation.
type windowStats struct {
	Visitors, Pageviews, Visits, Bounces, TotalTime int
}

func diff(cur, prev int) core.MetricValue {
	return core.MetricValue{Value: cur, Change: cur - prev}
}

func (c *Client) statsWindow(ctx context.Context, siteID string, dateRange any) (windowStats, error) {
	var payload queryResponse
	err := c.query(ctx, queryRequest{
		SiteID:    siteID,
		Metrics:   statsMetrics,
		DateRange: dateRange,
	}, &payload)
	if err != nil {
		return windowStats{}, fmt.Errorf("plausible: stats: %w", err)
	}

	row := payload.first()
	visits := row.metric(2)
	bounceRate := row.metric(3)
	avgDuration := row.metric(4)
	return windowStats{
		Visitors:  int(math.Round(row.metric(0))),
		Pageviews: int(math.Round(row.metric(1))),
		Visits:    int(math.Round(visits)),
		Bounces:   int(math.Round(bounceRate * visits / 100)),
		TotalTime: int(math.Round(avgDuration * visits)),
	}, nil
}

var seriesMetrics = map[core.Metric]string{
	core.MetricVisitors:  "visitors",
	core.MetricPageviews: "pageviews",
	core.MetricVisits:    "visits",
}

func (c *Client) TimeSeries(ctx context.Context, siteID string, r core.DateRange, metric core.Metric) ([]core.ChartPoint, error) {
	name, ok := seriesMetrics[metric]
	if !ok {
		// Derived metrics have no native series on this backend.
		return []core.ChartPoint{}, nil
	}

	rr := r.Resolve(c.now())
	var payload queryResponse
	err := c.query(ctx, queryRequest{
		SiteID:     siteID,
		Metrics:    []string{name},
		DateRange:  rangeValue(r, rr),
		Dimensions: []string{"time:" + string(rr.Unit)},
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("plausible: %s series: %w", name, err)
	}

	points := make([]core.ChartPoint, 0, len(payload.Results))
	for _, row := range payload.Results {
		if len(row.Dimensions) == 0 {
			continue
		}
		t, err := parseBucketTime(row.Dimensions[0])
		if err != nil {
			return nil, fmt.Errorf("plausible: %w: %v", core.ErrInvalidResponse, err)
		}
		points = append(points, core.ChartPoint{Time: t, Value: int(math.Round(row.metric(0)))})
	}
	return points, nil
}

func (c *Client) ActiveVisitors(ctx context.Context, siteID string) (int, error) {
	if c.apiKey == "" {
		return 0, core.ErrNotAuthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, shared.DefaultTimeout)
	defer cancel()

	target := c.baseURL + "/api/v1/stats/realtime/visitors?site_id=" + url.QueryEscape(siteID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("plausible: building realtime request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("plausible: realtime visitors: %w", err)
	}
	defer resp.Body.Close()

	if err := shared.CheckStatus(resp); err != nil {
		return 0, fmt.Errorf("plausible: realtime visitors: %w", err)
	}

	// The endpoint returns a bare integer body.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return 0, fmt.Errorf("plausible: reading realtime body: %w", err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, fmt.Errorf("plausible: %w: realtime body %q", core.ErrInvalidResponse, string(body))
	}
	return count, nil
}

var breakdownDimensions = map[core.Dimension]string{
	core.DimensionPage:      "event:page",
	core.DimensionReferrer:  "visit:source",
	core.DimensionCountry:   "visit:country",
	core.DimensionRegion:    "visit:region",
	core.DimensionCity:      "visit:city",
	core.DimensionDevice:    "visit:device",
	core.DimensionBrowser:   "visit:browser",
	core.DimensionOS:        "visit:os",
	core.DimensionEventName: "event:name",
}

func (c *Client) Breakdown(ctx context.Context, siteID string, r core.DateRange, d core.Dimension) ([]core.MetricItem, error) {
	dimension, ok := breakdownDimensions[d]
	if !ok {
		// Language and screen size are not queryable here.
		return []core.MetricItem{}, nil
	}

	rr := r.Resolve(c.now())
	var payload queryResponse
	err := c.query(ctx, queryRequest{
		SiteID:     siteID,
		Metrics:    []string{"visitors"},
		DateRange:  rangeValue(r, rr),
		Dimensions: []string{dimension},
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("plausible: %s breakdown: %w", dimension, err)
	}

	items := make([]core.MetricItem, 0, len(payload.Results))
	for _, row := range payload.Results {
		if len(row.Dimensions) == 0 {
			continue
		}
		items = append(items, core.MetricItem{Label: row.Dimensions[0], Value: int(math.Round(row.metric(0)))})
	}
	return items, nil
}

// rangeValue prefers the API's named shortcuts and falls back to an
// explicit [start, end] pair for windows the API has no name for.
func rangeValue(r core.DateRange, rr core.ResolvedRange) any {
	switch r.Preset {
	case core.RangeToday:
		return "day"
	case core.RangeLast7Days:
		return "7d"
	case core.RangeLast30Days:
		return "30d"
	case core.RangeThisMonth:
		return "month"
	case core.RangeThisYear:
		return "year"
	default:
		return pairValue(rr)
	}
}

// pairValue serializes an explicit window. Hour-resolution windows keep
// full timestamps: date-only bounds would widen a partial day to the whole
// calendar day and the comparison window would no longer match the current
// one in duration.
func pairValue(rr core.ResolvedRange) any {
	if rr.Unit == core.UnitHour {
		return []string{rr.Start.Format(time.RFC3339), rr.End.Format(time.RFC3339)}
	}
	return []string{rr.Start.Format(dateLayout), rr.End.Format(dateLayout)}
}

func (c *Client) query(ctx context.Context, reqBody queryRequest, v any) error {
	if c.apiKey == "" {
		return core.ErrNotAuthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, shared.HeavyTimeout)
	defer cancel()

	body, err := shared.EncodeBody(reqBody)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/query", body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return shared.DecodeJSON(resp, v)
}
