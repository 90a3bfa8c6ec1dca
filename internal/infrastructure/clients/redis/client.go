package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/raunelaunch/fooddiscovery/pkg/config"
	"github.com/raunelaunch/fooddiscovery/pkg/retry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Client owns the go-redis connection shared by the KV store and the event bus
type Client struct {
	client *redis.Client
}

// NewClient dials Redis and retries PING with backoff
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	client := redis.NewClient(opts)

	backoff := retry.DefaultConfig()
	backoff.MaxAttempts = 5
	backoff.MaxTotalTimeout = 20 * time.Second

	ping := func() error { return client.Ping(ctx).Err() }
	onRetry := func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).
			Str("addr", opts.Addr).
			Int("attempt", attempt).
			Dur("retry_in", nextDelay).
			Msg("Redis not reachable yet")
	}
	if err := retry.DoWithLog(ctx, backoff, "Redis", ping, onRetry); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", opts.Addr, err)
	}

	return &Client{client: client}, nil
}

// Client returns the go-redis handle
func (c *Client) Client() *redis.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Ping backs the readiness probe
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
