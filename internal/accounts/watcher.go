package accounts

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// Watch reloads the registry when another process rewrites the accounts
// file and broadcasts EventReloaded. Blocks until ctx is cancelled.
// Editors and the widget process write atomically via rename, so events
// are watched on the directory, not the file.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("accounts: creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("accounts: watching %s: %w", filepath.Dir(r.path), err)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(r.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Coalesce bursts from atomic-rename writers.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, r.reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("accounts: watcher error: %v", err)
		}
	}
}

func (r *Registry) reload() {
	r.mu.Lock()
	if err := r.loadLocked(); err != nil {
		r.mu.Unlock()
		log.Printf("accounts: reloading accounts file: %v", err)
		return
	}
	r.mu.Unlock()
	r.broadcast(Event{Type: EventReloaded})
}
