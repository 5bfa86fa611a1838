// pkg/connector/redis.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/config"
)

// RedisConnector wraps the go-redis client used for shared lookup stores
type RedisConnector struct {
	*redis.Client
	logger *zap.Logger
	cfg    config.RedisConfig
}

// NewRedisConnector connects to the configured redis and verifies it with a
// ping
func NewRedisConnector(ctx context.Context, cfg config.RedisConfig) (*RedisConnector, error) {
	logger := zap.L().Named("redis-connector")

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	logger.Info("Connecting to Redis",
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB),
		zap.String("key_prefix", cfg.KeyPrefix))

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisConnector{Client: client, logger: logger, cfg: cfg}, nil
}

// KeyPrefix returns the namespace under which lookup stores are kept
func (c *RedisConnector) KeyPrefix() string {
	return c.cfg.KeyPrefix
}

// Health checks if the Redis connection is healthy
func (c *RedisConnector) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisConnector) Close() error {
	stats := c.PoolStats()
	c.logger.Info("Closing Redis connection",
		zap.Uint32("hits", stats.Hits),
		zap.Uint32("misses", stats.Misses),
		zap.Uint32("total_conns", stats.TotalConns))
	return c.Client.Close()
}
