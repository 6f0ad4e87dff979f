package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/hypertile/pkg/observability"
)

// Instrumented reports hits, misses and writes of the wrapped cache to the
// registered observability.CacheHooks. The key type is the key's prefix up
// to the first colon, e.g. "tiling" or "artifact".
type Instrumented struct {
	Cache
}

// Instrument wraps c.
func Instrument(c Cache) *Instrumented {
	return &Instrumented{Cache: c}
}

// Get forwards to the wrapped cache and reports a hit or miss.
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

// Set forwards to the wrapped cache and reports the write.
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// Clear forwards to the wrapped cache if it supports clearing.
func (c *Instrumented) Clear(ctx context.Context) (int, error) {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}

// keyType returns the last prefix segment before the hash, so scoped keys
// such as "staging:tiling:<hash>" report "tiling".
func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
