package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/statdeck/statdeck/internal/accounts"
	"github.com/statdeck/statdeck/internal/config"
	"github.com/statdeck/statdeck/internal/core"
	"github.com/statdeck/statdeck/internal/dashboard"
	"github.com/statdeck/statdeck/internal/tui"
)

// runDashboard runs the TUI for the active account. When the account
// registry changes underneath it (another process switched accounts, or
// the accounts file was edited) the program restarts with the new state.
func runDashboard(cfg config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	for {
		restart, err := runDashboardOnce(ctx, cfg)
		if err != nil || !restart {
			return err
		}
	}
}

func runDashboardOnce(ctx context.Context, cfg config.Config) (restart bool, err error) {
	sess, err := openSession(ctx)
	if err != nil {
		if errors.Is(err, errNoAccounts) {
			fmt.Fprintln(os.Stderr, err)
			return false, nil
		}
		return false, err
	}
	defer sess.Close()

	sites, err := sess.sites(ctx)
	if err != nil {
		return false, fmt.Errorf("listing websites: %w", err)
	}

	agg := dashboard.New(sess.provider, sess.store, sess.account.ID)
	breakdown := func(ctx context.Context, siteID string, r core.DateRange, d core.Dimension) ([]core.MetricItem, error) {
		return sess.provider.Breakdown(ctx, siteID, r, d)
	}

	model := tui.NewModel(agg, breakdown, sites, sess.account.Name, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	events, unsubscribe := sess.registry.Subscribe()
	defer unsubscribe()
	go func() {
		if err := sess.registry.Watch(runCtx); err != nil {
			log.Printf("statdeck: accounts watcher: %v", err)
		}
	}()

	restartCh := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-runCtx.Done():
				program.Quit()
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				switch ev.Type {
				case accounts.EventActiveChanged, accounts.EventReloaded, accounts.EventAllRemoved:
					select {
					case restartCh <- struct{}{}:
					default:
					}
					program.Quit()
				}
			}
		}
	}()

	if _, err := program.Run(); err != nil {
		log.SetOutput(os.Stderr)
		return false, fmt.Errorf("running dashboard: %w", err)
	}

	select {
	case <-restartCh:
		return ctx.Err() == nil, nil
	default:
		return false, nil
	}
}
