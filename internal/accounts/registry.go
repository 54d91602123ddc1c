// Package accounts owns the configured account list, the single active
// account pointer and the credential hand-off into the secret store.
//
// Ordering invariant: SetActive persists the account and writes its
// credentials into the secret store before any subscriber hears about the
// switch. The debounce exists so dependent loaders reacting to the event
// never race the credential write.
package accounts

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/statdeck/statdeck/internal/core"
)

// DefaultDebounce delays change broadcasts so credential writes settle.
const DefaultDebounce = 300 * time.Millisecond

type EventType int

const (
	// EventActiveChanged fires after the active account switched and its
	// credentials are durably stored.
	EventActiveChanged EventType = iota
	// EventSitesUpdated fires when the active account's site list changed.
	EventSitesUpdated
	// EventAllRemoved fires when the last account was removed; consumers
	// treat it as a forced logout.
	EventAllRemoved
	// EventReloaded fires when the accounts file was rewritten by another
	// process and reloaded from disk.
	EventReloaded
)

type Event struct {
	Type    EventType
	Account *core.Account
}

type accountsFile struct {
	Accounts []core.Account `json:"accounts"`
	ActiveID string         `json:"active_account,omitempty"`
	Version  int            `json:"version,omitempty"`
}

// Registry is the single writer of the accounts file, the companion
// summary file and the provider-identifying secret keys.
type Registry struct {
	mu            sync.Mutex
	accounts      []core.Account
	activeID      string
	path          string
	companionPath string
	secrets       SecretStore
	debounce      time.Duration

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewRegistry loads the accounts file at path (a missing file means an
// empty registry) and wires the secret store the active credentials are
// pushed into.
func NewRegistry(path string, secrets SecretStore) (*Registry, error) {
	r := &Registry{
		path:          path,
		companionPath: companionPathFor(path),
		secrets:       secrets,
		debounce:      DefaultDebounce,
		subs:          make(map[int]chan Event),
	}
	if err := r.loadLocked(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetDebounce overrides the broadcast delay. Tests use 0.
func (r *Registry) SetDebounce(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debounce = d
}

func (r *Registry) Accounts() []core.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Account, len(r.accounts))
	copy(out, r.accounts)
	return out
}

// Active returns the active account. When none was explicitly chosen the
// first configured account is the default.
func (r *Registry) Active() (core.Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked()
}

func (r *Registry) activeLocked() (core.Account, bool) {
	for _, a := range r.accounts {
		if a.ID == r.activeID {
			return a, true
		}
	}
	if len(r.accounts) > 0 {
		return r.accounts[0], true
	}
	return core.Account{}, false
}

// Add upserts by (server URL, kind). The first account added becomes
// active. Returns the stored account with its assigned ID.
func (r *Registry) Add(acct core.Account) (core.Account, error) {
	if err := acct.Validate(); err != nil {
		return core.Account{}, err
	}

	r.mu.Lock()
	hadActive := len(r.accounts) > 0

	replaced := false
	for i, existing := range r.accounts {
		if existing.ServerURL == acct.ServerURL && existing.Kind == acct.Kind {
			acct.ID = existing.ID
			acct.CreatedAt = existing.CreatedAt
			r.accounts[i] = acct
			replaced = true
			break
		}
	}
	if !replaced {
		if acct.ID == "" {
			acct.ID = newID()
		}
		if acct.CreatedAt.IsZero() {
			acct.CreatedAt = time.Now()
		}
		r.accounts = append(r.accounts, acct)
	}

	if err := r.persistLocked(); err != nil {
		r.mu.Unlock()
		return core.Account{}, err
	}
	r.mu.Unlock()

	if !hadActive {
		if err := r.SetActive(acct.ID); err != nil {
			return core.Account{}, err
		}
	}
	return acct, nil
}

// Remove deletes the account by ID. Removing the active account promotes
// the next remaining one; removing the last account clears the secret
// store and broadcasts EventAllRemoved.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	wasActive := false
	if active, ok := r.activeLocked(); ok && active.ID == id {
		wasActive = true
	}

	kept := r.accounts[:0]
	for _, a := range r.accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	r.accounts = kept

	if len(r.accounts) == 0 {
		r.activeID = ""
		if err := r.persistLocked(); err != nil {
			r.mu.Unlock()
			return err
		}
		r.mu.Unlock()
		r.clearSecrets()
		r.broadcast(Event{Type: EventAllRemoved})
		return nil
	}

	if wasActive {
		next := r.accounts[0].ID
		if err := r.persistLocked(); err != nil {
			r.mu.Unlock()
			return err
		}
		r.mu.Unlock()
		return r.SetActive(next)
	}

	err := r.persistLocked()
	r.mu.Unlock()
	return err
}

// SetActive persists the pointer and pushes the account's credentials into
// the secret store, then notifies subscribers after the debounce.
func (r *Registry) SetActive(id string) error {
	r.mu.Lock()
	var acct *core.Account
	for i := range r.accounts {
		if r.accounts[i].ID == id {
			acct = &r.accounts[i]
			break
		}
	}
	if acct == nil {
		r.mu.Unlock()
		return fmt.Errorf("no account with id %q", id)
	}

	r.activeID = id
	if err := r.persistLocked(); err != nil {
		r.mu.Unlock()
		return err
	}
	selected := *acct
	debounce := r.debounce
	r.mu.Unlock()

	if err := r.pushCredentials(selected); err != nil {
		return err
	}

	r.notifyAfter(debounce, Event{Type: EventActiveChanged, Account: &selected})
	return nil
}

// UpdateSites merges a freshly observed site list into the account and
// re-broadcasts when it is the active one. Used for the backend without a
// server-side site listing.
func (r *Registry) UpdateSites(id string, sites []string) error {
	r.mu.Lock()
	var updated *core.Account
	for i := range r.accounts {
		if r.accounts[i].ID == id {
			r.accounts[i].Sites = append([]string(nil), sites...)
			updated = &r.accounts[i]
			break
		}
	}
	if updated == nil {
		r.mu.Unlock()
		return fmt.Errorf("no account with id %q", id)
	}
	if err := r.persistLocked(); err != nil {
		r.mu.Unlock()
		return err
	}

	isActive := false
	if active, ok := r.activeLocked(); ok && active.ID == id {
		isActive = true
	}
	changed := *updated
	debounce := r.debounce
	r.mu.Unlock()

	if isActive {
		r.notifyAfter(debounce, Event{Type: EventSitesUpdated, Account: &changed})
	}
	return nil
}

// Subscribe registers an event channel. The returned function
// unsubscribes and closes it.
func (r *Registry) Subscribe() (<-chan Event, func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan Event, 8)
	r.subs[id] = ch

	return ch, func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if existing, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(existing)
		}
	}
}

func (r *Registry) notifyAfter(debounce time.Duration, event Event) {
	if debounce <= 0 {
		r.broadcast(event)
		return
	}
	time.AfterFunc(debounce, func() {
		r.broadcast(event)
	})
}

func (r *Registry) broadcast(event Event) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- event:
		default:
			// Slow subscriber; drop rather than block the registry.
		}
	}
}

func (r *Registry) pushCredentials(acct core.Account) error {
	writes := []struct{ key, value string }{
		{KeyServerURL, acct.ServerURL},
		{KeyProviderType, string(acct.Kind)},
		{KeyUsername, acct.Username},
	}
	for _, w := range writes {
		if err := r.secrets.Save(w.key, w.value); err != nil {
			return err
		}
	}

	// Exactly one credential key holds a value at a time.
	if acct.Kind == core.ProviderPlausible {
		if err := r.secrets.Save(KeyAPIKey, acct.APIKey); err != nil {
			return err
		}
		return r.secrets.Delete(KeyAuthToken)
	}
	if err := r.secrets.Save(KeyAuthToken, acct.Token); err != nil {
		return err
	}
	return r.secrets.Delete(KeyAPIKey)
}

func (r *Registry) clearSecrets() {
	for _, key := range []string{KeyServerURL, KeyAuthToken, KeyUsername, KeyProviderType, KeyAPIKey} {
		_ = r.secrets.Delete(key)
	}
}

func (r *Registry) loadLocked() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading accounts file: %w", err)
	}

	var file accountsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing accounts file %s: %w", r.path, err)
	}
	r.accounts = file.Accounts
	r.activeID = file.ActiveID
	return nil
}

func (r *Registry) persistLocked() error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	data, err := json.MarshalIndent(accountsFile{
		Accounts: r.accounts,
		ActiveID: r.activeID,
		Version:  1,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling accounts: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("writing accounts file: %w", err)
	}

	return r.writeCompanionLocked()
}

func newID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("acct-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
