package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/webtools"
)

// Compile-time interface verification.
var _ webtools.AnalysisCache = (*AnalysisCache)(nil)

// AnalysisCache implements webtools.AnalysisCache using SQLite.
type AnalysisCache struct {
	db *DB

	// Now returns the current time; replaceable in tests.
	Now func() time.Time
}

// NewAnalysisCache creates a new AnalysisCache.
func NewAnalysisCache(db *DB) *AnalysisCache {
	return &AnalysisCache{db: db, Now: time.Now}
}

// Get returns the cached text for key.
func (c *AnalysisCache) Get(ctx context.Context, key string) (string, bool, error) {
	var text string
	err := c.db.QueryRowContext(ctx, `SELECT text FROM analysis_cache WHERE key = ?`, key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// Put stores text under key, replacing any previous value.
func (c *AnalysisCache) Put(ctx context.Context, key, text string) error {
	if key == "" {
		return webtools.Errorf(webtools.EINVALID, "cache key required")
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO analysis_cache (key, text, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET text = excluded.text, created_at = excluded.created_at
	`, key, text, formatTime(c.Now()))
	return err
}

// Keys returns every stored key.
func (c *AnalysisCache) Keys(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT key FROM analysis_cache`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
