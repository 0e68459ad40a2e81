package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// CacheGet returns a cached value. Expired entries are reported as misses.
func (db *DB) CacheGet(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt sql.NullTime

	err := db.QueryRowContext(ctx, `
		SELECT value, expires_at FROM cache_entries WHERE key = ?
	`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if expiresAt.Valid && !time.Now().Before(expiresAt.Time) {
		return nil, false, nil
	}
	return value, true, nil
}

// CacheSet stores a value. A ttl of zero or less never expires.
func (db *DB) CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, value, NullTime(expiresAt))
	return err
}

// CacheDelete removes a cached value
func (db *DB) CacheDelete(ctx context.Context, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

// CachePurgeExpired deletes expired entries and returns how many were removed
func (db *DB) CachePurgeExpired(ctx context.Context) (int64, error) {
	result, err := db.ExecContext(ctx, `
		DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at <= ?
	`, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
