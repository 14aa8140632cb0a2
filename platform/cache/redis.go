// Package cache provides the shared redis connection.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"fmt"
	"time"

	"distancematrix/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses REDIS_URL and verifies the server answers a ping.
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 2 * time.Second
	opt.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// HealthAdapter exposes a redis client as a readiness check.
type HealthAdapter struct {
	client *redis.Client
}

// NewHealthAdapter wraps client for the readiness endpoint.
func NewHealthAdapter(client *redis.Client) *HealthAdapter {
	return &HealthAdapter{client: client}
}

// Ping reports whether redis answers.
func (a *HealthAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}
