// v1
// internal/dashboard/cache.go
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache memoizes serialized API responses in Redis so repeated dashboard
// refreshes do not hammer the store. Cache failures are logged and the
// caller falls through to a direct query; the cache is an optimization,
// never a dependency.
type Cache struct {
	log *slog.Logger
	rdb *redis.Client
	ttl time.Duration
}

// NewCache connects to Redis at addr. The connection is verified so a
// misconfigured cache surfaces at startup rather than as silent misses.
func NewCache(ctx context.Context, log *slog.Logger, addr string, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Cache{log: log, rdb: rdb, ttl: ttl}, nil
}

// Get returns the cached body for key, if any. A nil Cache never hits.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", "key", key, "err", err)
		}
		return nil, false
	}
	return b, true
}

// Set stores body under key for the configured TTL. Best effort.
func (c *Cache) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "key", key, "err", err)
	}
}

// Close releases the client.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
