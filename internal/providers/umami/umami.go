// Package umami adapts a self-hosted Umami server to the canonical
// provider contract. Auth is a bearer token obtained from a username and
// password login; stats and series calls take millisecond-epoch windows
// plus a unit query parameter.
package umami

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/statdeck/statdeck/internal/core"
	"github.com/statdeck/statdeck/internal/providers/shared"
)

// Client implements core.Provider against one Umami server.
type Client struct {
	baseURL string
	token   string
	http    shared.HTTPClient
	now     func() time.Time
}

// New builds an adapter for an already-normalized server URL and token.
func New(serverURL, token string) *Client {
	return &Client{
		baseURL: serverURL,
		token:   token,
		http:    http.DefaultClient,
		now:     time.Now,
	}
}

// NewWithClient is New with an injected HTTP client, for tests.
func NewWithClient(serverURL, token string, httpClient shared.HTTPClient) *Client {
	c := New(serverURL, token)
	c.http = httpClient
	return c
}

func (c *Client) Kind() core.ProviderKind {
	return core.ProviderUmami
}

// Login authenticates against serverURL and returns the normalized URL and
// the bearer token the server issued.
func Login(ctx context.Context, httpClient shared.HTTPClient, serverURL, username, password string) (string, string, error) {
	if username == "" || password == "" {
		return "", "", fmt.Errorf("username and password required: %w", core.ErrInvalidCredentials)
	}
	normalized, err := shared.NormalizeServerURL(serverURL)
	if err != nil {
		return "", "", err
	}

	ctx, cancel := context.WithTimeout(ctx, shared.DefaultTimeout)
	defer cancel()

	body, err := shared.EncodeBody(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, normalized+"/api/auth/login", body)
	if err != nil {
		return "", "", fmt.Errorf("umami: building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("umami: login: %w", err)
	}
	defer resp.Body.Close()

	var payload loginResponse
	if err := shared.DecodeJSON(resp, &payload); err != nil {
		return "", "", fmt.Errorf("umami: login: %w", err)
	}
	if payload.Token == "" {
		return "", "", fmt.Errorf("umami: login returned no token: %w", core.ErrInvalidResponse)
	}
	return normalized, payload.Token, nil
}

// Authenticate verifies the stored token with one cheap call.
func (c *Client) Authenticate(ctx context.Context) error {
	var payload struct {
		ID string `json:"id"`
	}
	return c.get(ctx, "/api/auth/verify", nil, shared.DefaultTimeout, &payload)
}

func (c *Client) Websites(ctx context.Context) ([]core.Website, error) {
	var sites []core.Website
	for page := 1; ; page++ {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"pageSize": {"200"},
		}
		var envelope websitesEnvelope
		if err := c.get(ctx, "/api/websites", query, shared.DefaultTimeout, &envelope); err != nil {
			return nil, fmt.Errorf("umami: listing websites: %w", err)
		}
		for _, w := range envelope.Data {
			sites = append(sites, core.Website{
				ID:      w.ID,
				Name:    w.Name,
				Domain:  w.Domain,
				ShareID: w.ShareID,
				TeamID:  w.TeamID,
				ResetAt: w.ResetAt,
			})
		}
		if len(envelope.Data) == 0 || len(sites) >= envelope.Count {
			break
		}
	}
	return sites, nil
}

// Stats fetches the current window and its comparison window as two calls
// and derives absolute deltas. Umami has no native previous-period
// shortcut on this endpoint.
func (c *Client) Stats(ctx context.Context, siteID string, r core.DateRange) (core.Stats, error) {
	rr := r.Resolve(c.now())

	current, err := c.statsWindow(ctx, siteID, rr)
	if err != nil {
		return core.Stats{}, err
	}
	previous, err := c.statsWindow(ctx, siteID, rr.Previous())
	if err != nil {
		return core.Stats{}, err
	}

	delta := func(cur, prev float64) core.MetricValue {
		return core.MetricValue{
			Value:  int(math.Round(cur)),
			Change: int(math.Round(cur)) - int(math.Round(prev)),
		}
	}
	return core.Stats{
		Visitors:  delta(current.Visitors.Value, previous.Visitors.Value),
		Pageviews: delta(current.Pageviews.Value, previous.Pageviews.Value),
		Visits:    delta(current.Visits.Value, previous.Visits.Value),
		Bounces:   delta(current.Bounces.Value, previous.Bounces.Value),
		TotalTime: delta(current.TotalTime.Value, previous.TotalTime.Value),
	}, nil
}

func (c *Client) statsWindow(ctx context.Context, siteID string, rr core.ResolvedRange) (statsPayload, error) {
	var payload statsPayload
	err := c.get(ctx, "/api/websites/"+siteID+"/stats", windowQuery(rr), shared.HeavyTimeout, &payload)
	if err != nil {
		return statsPayload{}, fmt.Errorf("umami: stats: %w", err)
	}
	return payload, nil
}

func (c *Client) TimeSeries(ctx context.Context, siteID string, r core.DateRange, metric core.Metric) ([]core.ChartPoint, error) {
	rr := r.Resolve(c.now())
	query := windowQuery(rr)
	query.Set("timezone", "UTC")

	var envelope pageviewsEnvelope
	if err := c.get(ctx, "/api/websites/"+siteID+"/pageviews", query, shared.HeavyTimeout, &envelope); err != nil {
		return nil, fmt.Errorf("umami: pageviews series: %w", err)
	}

	raw := envelope.Pageviews
	if metric == core.MetricVisitors || metric == core.MetricVisits {
		raw = envelope.Sessions
	}

	points := make([]core.ChartPoint, 0, len(raw))
	for _, p := range raw {
		t, err := parseBucketTime(p.X)
		if err != nil {
			return nil, fmt.Errorf("umami: %w: %v", core.ErrInvalidResponse, err)
		}
		points = append(points, core.ChartPoint{Time: t, Value: int(math.Round(p.Y))})
	}
	return points, nil
}

func (c *Client) ActiveVisitors(ctx context.Context, siteID string) (int, error) {
	var payload activeEnvelope
	if err := c.get(ctx, "/api/websites/"+siteID+"/active", nil, shared.DefaultTimeout, &payload); err != nil {
		return 0, fmt.Errorf("umami: active visitors: %w", err)
	}
	return payload.Visitors, nil
}

func (c *Client) Breakdown(ctx context.Context, siteID string, r core.DateRange, d core.Dimension) ([]core.MetricItem, error) {
	metricType, ok := dimensionTypes[d]
	if !ok {
		return []core.MetricItem{}, nil
	}

	rr := r.Resolve(c.now())
	query := windowQuery(rr)
	query.Set("type", metricType)

	var rows []metricRow
	if err := c.get(ctx, "/api/websites/"+siteID+"/metrics", query, shared.HeavyTimeout, &rows); err != nil {
		return nil, fmt.Errorf("umami: %s breakdown: %w", metricType, err)
	}

	items := make([]core.MetricItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, core.MetricItem{Label: row.X, Value: int(math.Round(row.Y))})
	}
	return items, nil
}

var dimensionTypes = map[core.Dimension]string{
	core.DimensionPage:       "url",
	core.DimensionReferrer:   "referrer",
	core.DimensionCountry:    "country",
	core.DimensionRegion:     "region",
	core.DimensionCity:       "city",
	core.DimensionDevice:     "device",
	core.DimensionBrowser:    "browser",
	core.DimensionOS:         "os",
	core.DimensionLanguage:   "language",
	core.DimensionScreenSize: "screen",
	core.DimensionEventName:  "event",
}

// UpdateShareID sets or clears a website's public share-link id and
// returns the updated website so callers can merge the new ShareID.
// This is Umami-specific; Plausible manages shared links server-side.
func (c *Client) UpdateShareID(ctx context.Context, siteID, shareID string) (core.Website, error) {
	var payload websitePayload
	body := map[string]any{"shareId": shareID}
	if shareID == "" {
		body["shareId"] = nil
	}
	if err := c.post(ctx, "/api/websites/"+siteID, body, &payload); err != nil {
		return core.Website{}, fmt.Errorf("umami: updating share link: %w", err)
	}
	return core.Website{
		ID:      payload.ID,
		Name:    payload.Name,
		Domain:  payload.Domain,
		ShareID: payload.ShareID,
		TeamID:  payload.TeamID,
		ResetAt: payload.ResetAt,
	}, nil
}

func windowQuery(rr core.ResolvedRange) url.Values {
	return url.Values{
		"startAt": {strconv.FormatInt(rr.Start.UnixMilli(), 10)},
		"endAt":   {strconv.FormatInt(rr.End.UnixMilli(), 10)},
		"unit":    {string(rr.Unit)},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, timeout time.Duration, v any) error {
	if c.token == "" {
		return core.ErrNotAuthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return shared.DecodeJSON(resp, v)
}

func (c *Client) post(ctx context.Context, path string, payload, v any) error {
	if c.token == "" {
		return core.ErrNotAuthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, shared.DefaultTimeout)
	defer cancel()

	body, err := shared.EncodeBody(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return shared.DecodeJSON(resp, v)
}
