package core

import (
	"fmt"
	"time"
)

// Account pairs a backend with its credentials. Exactly one credential
// field is populated: Token for Umami, APIKey for Plausible. Sites is only
// meaningful for Plausible, which has no server-side site listing.
type Account struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	ServerURL string       `json:"server_url"`
	Kind      ProviderKind `json:"provider_type"`
	Username  string       `json:"username,omitempty"`
	Token     string       `json:"token,omitempty"`
	APIKey    string       `json:"api_key,omitempty"`
	Sites     []string     `json:"sites,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Credential returns whichever secret the account's kind uses.
func (a Account) Credential() string {
	if a.Kind == ProviderPlausible {
		return a.APIKey
	}
	return a.Token
}

// Validate checks the one-credential-per-kind invariant.
func (a Account) Validate() error {
	switch a.Kind {
	case ProviderUmami:
		if a.Token == "" {
			return fmt.Errorf("umami account %q: %w", a.ID, ErrNotAuthenticated)
		}
		if a.APIKey != "" {
			return fmt.Errorf("umami account %q carries an API key", a.ID)
		}
	case ProviderPlausible:
		if a.APIKey == "" {
			return fmt.Errorf("plausible account %q: %w", a.ID, ErrNotAuthenticated)
		}
		if a.Token != "" {
			return fmt.Errorf("plausible account %q carries a token", a.ID)
		}
	default:
		return fmt.Errorf("unknown provider kind %q", a.Kind)
	}
	return nil
}
