// Package shared holds the request plumbing both adapters use: server URL
// normalization, JSON round-trips and upstream status mapping.
package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/statdeck/statdeck/internal/core"
)

const (
	// DefaultTimeout bounds lightweight calls (realtime counts, auth checks).
	DefaultTimeout = 10 * time.Second
	// HeavyTimeout bounds stats and series queries.
	HeavyTimeout = 30 * time.Second
)

// HTTPClient covers *http.Client so tests can substitute transports.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NormalizeServerURL trims whitespace and trailing slashes and forces an
// https scheme when none was typed. Returns ErrInvalidCredentials for
// input that cannot name a server.
func NormalizeServerURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty server URL: %w", core.ErrInvalidCredentials)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	raw = strings.TrimRight(raw, "/")

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("server URL %q: %w", raw, core.ErrInvalidCredentials)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("server URL scheme %q: %w", u.Scheme, core.ErrInvalidCredentials)
	}
	return u.String(), nil
}

// EncodeBody marshals v for a JSON request body. A nil v yields no body.
func EncodeBody(v any) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// CheckStatus maps an upstream non-2xx status onto the shared error
// taxonomy: 401 is ErrUnauthorized, anything else becomes an APIError when
// the body carries an error envelope, a StatusError otherwise.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return core.ErrUnauthorized
	}
	if msg := decodeErrorEnvelope(resp); msg != "" {
		return &core.APIError{Message: msg}
	}
	return &core.StatusError{Code: resp.StatusCode}
}

// DecodeJSON reads and decodes a 2xx response body into v, surfacing
// upstream failures via CheckStatus first.
func DecodeJSON(resp *http.Response, v any) error {
	if err := CheckStatus(resp); err != nil {
		return err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidResponse, err)
	}
	return nil
}

func decodeErrorEnvelope(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return ""
	}
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}
