package exchange

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache keeps the entry in a single-row table of a SQLite database.
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLiteCache opens (or creates) the database at dsn and ensures the
// cache table exists. Pass ":memory:" for an in-memory database.
func OpenSQLiteCache(dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS rate_cache (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		value REAL NOT NULL,
		source TEXT NOT NULL,
		date TEXT NOT NULL,
		stored_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create rate_cache table: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Load(ctx context.Context) (CacheEntry, bool, error) {
	var entry CacheEntry
	var storedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT value, source, date, stored_at FROM rate_cache WHERE id = 1`,
	).Scan(&entry.Value, &entry.Source, &entry.Date, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CacheEntry{}, false, nil
	}
	if err != nil {
		return CacheEntry{}, false, fmt.Errorf("query rate_cache: %w", err)
	}
	entry.Timestamp = time.UnixMilli(storedAt)
	return entry, true, nil
}

func (c *SQLiteCache) Store(ctx context.Context, entry CacheEntry) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO rate_cache (id, value, source, date, stored_at) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET value = excluded.value, source = excluded.source,
			date = excluded.date, stored_at = excluded.stored_at`,
		entry.Value, entry.Source, entry.Date, entry.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert rate_cache: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
