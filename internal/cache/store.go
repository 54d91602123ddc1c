// Package cache is the read-through payload cache. Entries never expire
// on their own: a fresh fetch always supersedes, a failed fetch falls
// back regardless of age. Keys carry the account ID so switching accounts
// never serves another account's dashboards.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry kinds.
const (
	KindStats     = "stats"
	KindSeries    = "series"
	KindWebsites  = "websites"
	KindBreakdown = "breakdown"
	KindRealtime  = "realtime"
)

// ErrMiss reports an absent cache entry.
var ErrMiss = errors.New("cache miss")

// Key addresses one cached payload. EntityID is empty for account-level
// payloads such as the website list.
type Key struct {
	AccountID string
	Kind      string
	EntityID  string
	RangeID   string
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the DB file (and its directory) if needed and prepares the
// schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening DB: %w", err)
	}

	store := NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS payloads (
			account_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			entity_id TEXT NOT NULL DEFAULT '',
			range_id TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL,
			captured_at TEXT NOT NULL,
			PRIMARY KEY (account_id, kind, entity_id, range_id)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("cache: initializing schema: %w", err)
		}
	}
	return nil
}

// Save overwrites the entry for key with v.
func (s *Store) Save(ctx context.Context, key Key, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: marshaling payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO payloads (account_id, kind, entity_id, range_id, payload, captured_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, kind, entity_id, range_id)
		DO UPDATE SET payload = excluded.payload, captured_at = excluded.captured_at`,
		key.AccountID, key.Kind, key.EntityID, key.RangeID,
		string(payload), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("cache: saving %s/%s: %w", key.Kind, key.EntityID, err)
	}
	return nil
}

// Load decodes the entry for key into v and returns its capture time.
// Returns ErrMiss when no entry exists.
func (s *Store) Load(ctx context.Context, key Key, v any) (time.Time, error) {
	var payload, capturedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, captured_at FROM payloads
		WHERE account_id = ? AND kind = ? AND entity_id = ? AND range_id = ?`,
		key.AccountID, key.Kind, key.EntityID, key.RangeID).Scan(&payload, &capturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("cache: loading %s/%s: %w", key.Kind, key.EntityID, err)
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return time.Time{}, fmt.Errorf("cache: decoding %s/%s: %w", key.Kind, key.EntityID, err)
	}
	captured, err := time.Parse(time.RFC3339, capturedAt)
	if err != nil {
		captured = time.Time{}
	}
	return captured, nil
}

// PurgeAccount drops every entry the account owns. Called when an account
// is removed.
func (s *Store) PurgeAccount(ctx context.Context, accountID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM payloads WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("cache: purging account %s: %w", accountID, err)
	}
	return nil
}
