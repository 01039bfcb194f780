package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRefreshLimiter implements RefreshLimiter using Redis, for deployments
// where several instances must share cooldown state
type RedisRefreshLimiter struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRefreshLimiter creates a Redis-backed limiter and verifies the connection
func NewRedisRefreshLimiter(cfg RedisConfig) (*RedisRefreshLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRefreshLimiter{
		client:    client,
		keyPrefix: "sync:cooldown:",
	}, nil
}

// NewRedisRefreshLimiterWithClient creates a limiter with an existing client,
// useful for testing or sharing a client across components
func NewRedisRefreshLimiterWithClient(client *redis.Client, keyPrefix string) *RedisRefreshLimiter {
	if keyPrefix == "" {
		keyPrefix = "sync:cooldown:"
	}
	return &RedisRefreshLimiter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Allow uses SETNX with TTL: the first caller inside a window wins, everyone
// else is rejected until the key expires
func (l *RedisRefreshLimiter) Allow(ctx context.Context, memberNo string, cooldown time.Duration) (bool, error) {
	key := l.keyPrefix + memberNo

	granted, err := l.client.SetNX(ctx, key, "1", cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check refresh cooldown: %w", err)
	}
	return granted, nil
}

// Close closes the Redis client
func (l *RedisRefreshLimiter) Close() error {
	return l.client.Close()
}

// Ensure RedisRefreshLimiter implements RefreshLimiter
var _ RefreshLimiter = (*RedisRefreshLimiter)(nil)
