package serp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/seobrief/internal/cache"
	"github.com/vijay-prabhu/seobrief/internal/metrics"
)

const cacheKeyPrefix = "serp:"

// CachedClient serves snapshots from a cache before asking the wrapped
// Searcher. Cache failures are logged and never fail a search.
type CachedClient struct {
	next    Searcher
	store   cache.Store
	ttl     time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewCachedClient wraps next with a cache
func NewCachedClient(next Searcher, store cache.Store, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *CachedClient {
	return &CachedClient{
		next:    next,
		store:   store,
		ttl:     ttl,
		metrics: m,
		log:     logger.With().Str("component", "serp_cache").Logger(),
	}
}

// CacheKey returns the cache key for a query
func CacheKey(query string) string {
	return cacheKeyPrefix + NormalizeQuery(query)
}

// Search implements Searcher
func (c *CachedClient) Search(ctx context.Context, query string) (*Snapshot, error) {
	key := CacheKey(query)

	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if ok {
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			snap.Cached = true
			c.metrics.ObserveSERP(metrics.OutcomeCacheHit)
			return &snap, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding unreadable cache entry")
	}

	snap, err := c.next.Search(ctx, query)
	if err != nil {
		c.metrics.ObserveSERP(metrics.OutcomeError)
		return nil, err
	}
	c.metrics.ObserveSERP(metrics.OutcomeOK)

	if data, err := json.Marshal(snap); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return snap, nil
}
