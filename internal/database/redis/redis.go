package redis

import (
	"context"
	"fmt"
	"time"

	"availability-service/internal/config"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// Client wraps the Redis connection used for the resolved-policy cache.
type Client struct {
	client *redis.Client
}

// NewRedisClient connects to Redis and verifies the connection with a ping.
// The cache is optional, so callers treat a failure here as a warning.
func NewRedisClient(cfg config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// GetClient returns the underlying Redis client for repository use.
func (c *Client) GetClient() *redis.Client {
	return c.client
}

// Healthy pings Redis, for the health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}
