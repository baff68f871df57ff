package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
)

// jitterFraction spreads TTLs by ±10% so cached evaluations written in one
// batch do not all expire on the same tick.
const jitterFraction = 0.10

// Cache implements the byte-level cache port on top of Redis strings.
type Cache struct {
	client     *Client
	defaultTTL time.Duration
	logger     logging.Logger
	group      singleflight.Group
}

// NewCache builds a cache over an established client. The default TTL comes
// from the client configuration and applies when callers pass a zero TTL.
func NewCache(client *Client) *Cache {
	ttl := client.Config().DefaultTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		client:     client,
		defaultTTL: ttl,
		logger:     client.logger.Named("cache"),
	}
}

// Get returns the raw value for key, or a cache-miss error when absent.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.rdb.Get(ctx, c.client.key(key)).Bytes()
	if err == redis.Nil {
		return nil, appErrors.New(appErrors.ErrCodeCacheError, "cache miss: "+key)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCacheError, "cache get")
	}
	return data, nil
}

// Set stores value under key with a jittered TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.rdb.Set(ctx, c.client.key(key), value, jitterTTL(ttl)).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCacheError, "cache set")
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.rdb.Del(ctx, c.client.key(key)).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCacheError, "cache delete")
	}
	return nil
}

// GetOrLoad returns the cached value for key, invoking load on a miss and
// caching the result. Concurrent misses on the same key collapse into a
// single load call.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if data, err := c.Get(ctx, key); err == nil {
		return data, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check: another caller may have populated the key while this
		// one waited on the flight group.
		if data, err := c.Get(ctx, key); err == nil {
			return data, nil
		}
		data, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if setErr := c.Set(ctx, key, data, ttl); setErr != nil {
			c.logger.Warn("cache backfill failed", logging.String("key", key), logging.Err(setErr))
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// jitterTTL perturbs ttl by up to ±10%.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	max := float64(ttl) * jitterFraction
	delta := (rand.Float64()*2 - 1) * max
	return ttl + time.Duration(delta)
}
