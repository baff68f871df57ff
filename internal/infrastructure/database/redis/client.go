// Package redis wraps go-redis for the two concerns the platform puts in
// Redis: the evaluation result cache and the score leaderboard.
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
)

// Client owns the underlying go-redis connection and guards it against use
// after Close.
type Client struct {
	rdb    *redis.Client
	cfg    config.RedisConfig
	logger logging.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient dials Redis and verifies connectivity with a ping before
// returning.
func NewClient(ctx context.Context, cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	if cfg.Addr == "" {
		return nil, appErrors.InvalidParam("redis.addr must not be empty")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCacheError, "ping redis")
	}

	log.Info("redis connected",
		logging.String("addr", cfg.Addr),
		logging.Int("db", cfg.DB),
	)

	return &Client{
		rdb:    rdb,
		cfg:    cfg,
		logger: log.Named("redis"),
	}, nil
}

// NewClientFromRDB wraps an existing go-redis client. Used by tests running
// against miniredis or testcontainers.
func NewClientFromRDB(rdb *redis.Client, cfg config.RedisConfig, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{rdb: rdb, cfg: cfg, logger: log.Named("redis")}
}

// RDB exposes the raw go-redis client.
func (c *Client) RDB() *redis.Client { return c.rdb }

// Config returns the configuration the client was built with.
func (c *Client) Config() config.RedisConfig { return c.cfg }

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return appErrors.InvalidState("redis client is closed")
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCacheError, "redis health check")
	}
	return nil
}

// Close releases the connection pool. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.logger.Info("redis connection closed")
	return c.rdb.Close()
}

// key namespaces a logical key under the configured prefix.
func (c *Client) key(parts ...string) string {
	k := c.cfg.KeyPrefix
	if k == "" {
		k = "medrank"
	}
	for _, p := range parts {
		k += ":" + p
	}
	return k
}
