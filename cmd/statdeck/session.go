package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/statdeck/statdeck/internal/accounts"
	"github.com/statdeck/statdeck/internal/cache"
	"github.com/statdeck/statdeck/internal/config"
	"github.com/statdeck/statdeck/internal/core"
	"github.com/statdeck/statdeck/internal/providers"
)

const keyringService = "statdeck"

var errNoAccounts = errors.New("no accounts configured, run `statdeck login` first")

func openRegistry() (*accounts.Registry, error) {
	return accounts.NewRegistry(config.AccountsPath(), accounts.NewKeyringStore(keyringService))
}

// session bundles everything a command needs to talk to the active
// account's backend.
type session struct {
	registry *accounts.Registry
	account  core.Account
	provider core.Provider
	store    *cache.Store
}

func openSession(ctx context.Context) (*session, error) {
	registry, err := openRegistry()
	if err != nil {
		return nil, err
	}

	acct, ok := registry.Active()
	if !ok {
		return nil, errNoAccounts
	}

	provider, err := providers.ForAccount(acct)
	if err != nil {
		return nil, err
	}

	store, err := cache.Open(config.CachePath())
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return &session{registry: registry, account: acct, provider: provider, store: store}, nil
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

// sites lists the active account's websites through the cache, so the
// dashboard still opens when the backend is unreachable.
func (s *session) sites(ctx context.Context) ([]core.Website, error) {
	key := cache.Key{AccountID: s.account.ID, Kind: cache.KindWebsites}
	res, err := cache.Fetch(ctx, s.store, key, func(ctx context.Context) ([]core.Website, error) {
		return s.provider.Websites(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}
