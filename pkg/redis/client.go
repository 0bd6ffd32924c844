package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pickspot/vendor-portal/pkg/config"
	"github.com/pickspot/vendor-portal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace    = "portal"
	rateLimitPrefix = "rate_limit"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
}

// Client wraps the redis connection helpers needed by the portal: rate-limit
// counters and the readiness ping.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// IncrWithTTL increments and ensures the key has the supplied TTL on the first increment.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if c.store == nil {
		return 0, errors.New("redis client not initialized")
	}
	count, err := c.store.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if ttl > 0 && count == 1 {
		if _, expErr := c.store.Expire(ctx, key, ttl).Result(); expErr != nil {
			return count, expErr
		}
	}
	return count, nil
}

// FixedWindowAllow applies a simple fixed-window rate limit.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	key := c.RateLimitKey(scope)
	count, err := c.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

// RateLimitKey returns a namespaced key for rate limit counters.
func (c *Client) RateLimitKey(scope string) string {
	return c.buildKey(rateLimitPrefix, scope)
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close tears down the underlying connection pool.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) buildKey(parts ...string) string {
	cleaned := make([]string, 0, len(parts)+1)
	cleaned = append(cleaned, keyNamespace)
	for _, part := range parts {
		if part == "" {
			continue
		}
		cleaned = append(cleaned, part)
	}
	return strings.Join(cleaned, ":")
}
