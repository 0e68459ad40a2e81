package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("value"), time.Hour))
	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	require.NoError(t, store.Set(ctx, "k", []byte("replaced"), 0))
	got, _, _ = store.Get(ctx, "k")
	assert.Equal(t, []byte("replaced"), got)

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), got)
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, NewSQLite(openTestDB(t)))
}

func TestCompressedStore(t *testing.T) {
	inner := NewMemory()
	store, err := NewCompressed(inner)
	require.NoError(t, err)

	exerciseStore(t, store)

	ctx := context.Background()
	payload := bytes.Repeat([]byte(`{"title":"Best yoga mats","url":"https://example.com"}`), 50)
	require.NoError(t, store.Set(ctx, "big", payload, 0))

	raw, ok, _ := inner.Get(ctx, "big")
	require.True(t, ok)
	assert.Less(t, len(raw), len(payload))

	got, ok, err := store.Get(ctx, "big")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestCompressedTreatsPlainEntriesAsMiss(t *testing.T) {
	inner := NewMemory()
	ctx := context.Background()
	require.NoError(t, inner.Set(ctx, "plain", []byte("not zstd"), 0))

	store, err := NewCompressed(inner)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, "plain")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewSelectsBackend(t *testing.T) {
	db := openTestDB(t)

	store, err := New(config.CacheConfig{Backend: "sqlite"}, db)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, store)

	store, err = New(config.CacheConfig{Backend: "sqlite", Compress: true}, db)
	require.NoError(t, err)
	assert.IsType(t, &Compressed{}, store)

	store, err = New(config.CacheConfig{Backend: "none", Compress: true}, nil)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, store)

	_, err = New(config.CacheConfig{Backend: "sqlite"}, nil)
	assert.Error(t, err)

	_, err = New(config.CacheConfig{Backend: "memcached"}, nil)
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SEOBRIEF_TEST_REDIS")
	if addr == "" {
		t.Skip("SEOBRIEF_TEST_REDIS not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	store := NewRedis(client, "seobrief-test:")
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	exerciseStore(t, store)
}
