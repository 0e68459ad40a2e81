package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Compressed zstd-compresses values before handing them to the wrapped
// store. SERP snapshots are repetitive JSON and shrink well.
type Compressed struct {
	inner   Store
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCompressed wraps inner.
func NewCompressed(inner Store) (*Compressed, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Compressed{inner: inner, encoder: encoder, decoder: decoder}, nil
}

func (c *Compressed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}

	value, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		// Entries written without compression are treated as misses.
		return nil, false, nil
	}
	return value, true, nil
}

func (c *Compressed) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, key, c.encoder.EncodeAll(value, nil), ttl)
}

func (c *Compressed) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

// Close releases the codec and closes the wrapped store when it holds a
// connection.
func (c *Compressed) Close() error {
	c.decoder.Close()
	if closer, ok := c.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
