package cache

import (
	"context"
	"time"

	"github.com/vijay-prabhu/seobrief/internal/database"
)

// SQLite keeps entries in the application database.
type SQLite struct {
	db *database.DB
}

// NewSQLite creates a store backed by the cache_entries table.
func NewSQLite(db *database.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.db.CacheGet(ctx, key)
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.db.CacheSet(ctx, key, value, ttl)
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.db.CacheDelete(ctx, key)
}

// Purge removes expired entries.
func (s *SQLite) Purge(ctx context.Context) (int64, error) {
	return s.db.CachePurgeExpired(ctx)
}
