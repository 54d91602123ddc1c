package shared

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/statdeck/statdeck/internal/core"
)

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"stats.example.com", "https://stats.example.com", false},
		{"stats.example.com/", "https://stats.example.com", false},
		{"https://stats.example.com///", "https://stats.example.com", false},
		{"http://localhost:3000/", "http://localhost:3000", false},
		{"  https://stats.example.com  ", "https://stats.example.com", false},
		{"", "", true},
		{"   ", "", true},
		{"ftp://stats.example.com", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeServerURL(tt.in)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidCredentials) {
					t.Errorf("err = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeServerURL(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeServerURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func respWith(code int, body string) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(body))}
}

func TestCheckStatus(t *testing.T) {
	if err := CheckStatus(respWith(200, "")); err != nil {
		t.Errorf("200: err = %v", err)
	}
	if err := CheckStatus(respWith(401, "")); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("401: err = %v, want ErrUnauthorized", err)
	}

	err := CheckStatus(respWith(422, `{"error":"domain already exists"}`))
	var apiErr *core.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "domain already exists" {
		t.Errorf("422 envelope: err = %v, want APIError", err)
	}

	err = CheckStatus(respWith(500, "oops"))
	var se *core.StatusError
	if !errors.As(err, &se) || se.Code != 500 {
		t.Errorf("500: err = %v, want StatusError 500", err)
	}
}

func TestDecodeJSONInvalidPayload(t *testing.T) {
	var v struct{}
	err := DecodeJSON(respWith(200, "<html>not json</html>"), &v)
	if !errors.Is(err, core.ErrInvalidResponse) {
		t.Errorf("err = %v, want ErrInvalidResponse", err)
	}
}
