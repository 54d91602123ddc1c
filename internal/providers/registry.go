// Package providers constructs the concrete adapter for an account so
// callers only ever speak the canonical provider contract.
package providers

import (
	"fmt"

	"github.com/statdeck/statdeck/internal/core"
	"github.com/statdeck/statdeck/internal/providers/plausible"
	"github.com/statdeck/statdeck/internal/providers/umami"
)

// ForAccount builds the adapter matching the account's kind. This is the
// single place the backend choice is made; everything downstream is
// provider-agnostic.
func ForAccount(acct core.Account) (core.Provider, error) {
	switch acct.Kind {
	case core.ProviderUmami:
		return umami.New(acct.ServerURL, acct.Token), nil
	case core.ProviderPlausible:
		return plausible.New(acct.ServerURL, acct.APIKey, acct.Sites), nil
	default:
		return nil, fmt.Errorf("no adapter for provider kind %q", acct.Kind)
	}
}
