package accounts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// companionAccount is the summary shape a separate display process (the
// home-screen widget) reads. Kept deliberately flat: the widget has no
// access to this package's types.
type companionAccount struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ServerURL    string   `json:"serverURL"`
	ProviderType string   `json:"providerType"`
	Token        string   `json:"token"`
	Sites        []string `json:"sites"`
}

func companionPathFor(accountsPath string) string {
	dir := filepath.Dir(accountsPath)
	base := strings.TrimSuffix(filepath.Base(accountsPath), filepath.Ext(accountsPath))
	return filepath.Join(dir, base+"-widget.json")
}

// writeCompanionLocked rewrites the widget summary file. Called with r.mu
// held, on every accounts change.
func (r *Registry) writeCompanionLocked() error {
	summaries := make([]companionAccount, 0, len(r.accounts))
	for _, a := range r.accounts {
		summaries = append(summaries, companionAccount{
			ID:           a.ID,
			Name:         a.Name,
			ServerURL:    a.ServerURL,
			ProviderType: string(a.Kind),
			Token:        a.Credential(),
			Sites:        a.Sites,
		})
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling widget summary: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(r.companionPath, data, 0o600); err != nil {
		return fmt.Errorf("writing widget summary: %w", err)
	}
	return nil
}
