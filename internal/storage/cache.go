package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache stores enhancement results keyed by provider, model and chunk
// hash, so re-importing a document does not call the provider again.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates a SQLite cache at the given path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createCacheSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createCacheSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS enhancements (
			key TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_enhancements_created ON enhancements(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the cached result for key. The second result is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var data string
	err := c.db.QueryRowContext(ctx, `SELECT data FROM enhancements WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return json.RawMessage(data), true, nil
}

// Put stores data under key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key, provider string, data json.RawMessage) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO enhancements (key, provider, data, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET provider = excluded.provider, data = excluded.data, created_at = excluded.created_at
	`, key, provider, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Count returns the number of cached entries.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enhancements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}

// Prune deletes entries created before cutoff and returns how many were removed.
func (c *Cache) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM enhancements WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}
