package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

var (
	// ErrNotAuthenticated means no credential is present for the account;
	// the call never reached the network.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidCredentials means the supplied credential input was
	// malformed before any network call was made.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means the server rejected the credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidResponse means the payload could not be decoded.
	ErrInvalidResponse = errors.New("invalid response")
)

// StatusError carries a non-401 upstream HTTP failure code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned HTTP %d", e.Code)
}

// APIError carries a human-readable error extracted from an upstream error
// envelope (invalid domain, duplicate site, ...).
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsCancelled reports whether err stems from a cancelled context. Callers
// treat these as silent no-ops (pull-to-refresh races), never as failures.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsOffline classifies err as connectivity-related: timeouts, refused or
// unreachable hosts, DNS failures. Only these degrade to cached data; auth
// and server errors stay visible failures.
func IsOffline(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return IsOffline(urlErr.Err)
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}
