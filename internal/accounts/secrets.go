package accounts

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// Well-known secret keys the active account's credentials are published
// under. Adapters and the widget process read these; only the registry
// writes them.
const (
	KeyServerURL    = "serverURL"
	KeyAuthToken    = "authToken"
	KeyUsername     = "username"
	KeyProviderType = "providerType"
	KeyAPIKey       = "apiKey"
)

// SecretStore is an opaque keyed secret store. Load returns "" without
// error for absent keys.
type SecretStore interface {
	Save(key, value string) error
	Load(key string) (string, error)
	Delete(key string) error
}

// KeyringStore keeps secrets in the OS keychain.
type KeyringStore struct {
	service string
}

func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = "statdeck"
	}
	return &KeyringStore{service: service}
}

func (s *KeyringStore) Save(key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring: saving %s: %w", key, err)
	}
	return nil
}

func (s *KeyringStore) Load(key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring: loading %s: %w", key, err)
	}
	return value, nil
}

func (s *KeyringStore) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("keyring: deleting %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-process SecretStore for tests and headless
// environments without a keychain.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Load(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
