// Package cache stores opaque byte values with a time-to-live. It backs the
// SERP snapshot cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/database"
)

// Store is a key/value cache. Get reports a miss with ok=false and a nil
// error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg. db is used by the sqlite backend and
// may be nil for the others.
func New(cfg config.CacheConfig, db *database.DB) (Store, error) {
	var store Store
	switch cfg.Backend {
	case "sqlite":
		if db == nil {
			return nil, fmt.Errorf("sqlite cache requires a database")
		}
		store = NewSQLite(db)
	case "redis":
		store = NewRedis(redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		}), "seobrief:")
	case "none", "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}

	if cfg.Compress {
		return NewCompressed(store)
	}
	return store, nil
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Delete(context.Context, string) error { return nil }
