// Package cache opens the Redis connection shared by active-client
// preferences and health checks.
package cache

import (
	"context"
	"crypto/tls"
	"errors"

	"marketing_dashboard_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses REDIS_URL and applies the TLS override.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}

// Pinger adapts a Redis client to the readiness check interface.
type Pinger struct {
	Client *redis.Client
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
