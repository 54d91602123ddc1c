package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/statdeck/statdeck/internal/core"
)

// Result is a payload plus where it came from. Offline is only set when a
// connectivity failure was absorbed by serving the cached copy; auth and
// server failures never masquerade as offline.
type Result[T any] struct {
	Data       T
	FromCache  bool
	Offline    bool
	CapturedAt time.Time
}

// Fetch performs the authoritative live fetch for key. On success the
// cache entry is overwritten. On a connectivity-classified failure the
// last-known-good entry is re-surfaced with the offline flag set; any
// other failure (including cancellation) propagates untouched.
func Fetch[T any](ctx context.Context, store *Store, key Key, fetch func(context.Context) (T, error)) (Result[T], error) {
	fresh, err := fetch(ctx)
	if err == nil {
		// A cache write failure never outranks fresh data; the entry is
		// just stale for the next offline fallback.
		if saveErr := store.Save(ctx, key, fresh); saveErr != nil {
			log.Printf("cache: saving %s/%s: %v", key.Kind, key.EntityID, saveErr)
		}
		return Result[T]{Data: fresh}, nil
	}

	if core.IsCancelled(err) || !core.IsOffline(err) {
		return Result[T]{}, err
	}

	var cached T
	capturedAt, loadErr := store.Load(ctx, key, &cached)
	if loadErr != nil {
		if errors.Is(loadErr, ErrMiss) {
			// Nothing to degrade to; the original failure stands.
			return Result[T]{}, err
		}
		return Result[T]{}, loadErr
	}
	return Result[T]{Data: cached, FromCache: true, Offline: true, CapturedAt: capturedAt}, nil
}

// Peek returns the cached payload for instant paint before a live fetch
// is issued. ok is false on a miss.
func Peek[T any](ctx context.Context, store *Store, key Key) (T, time.Time, bool) {
	var cached T
	capturedAt, err := store.Load(ctx, key, &cached)
	if err != nil {
		var zero T
		return zero, time.Time{}, false
	}
	return cached, capturedAt, true
}
