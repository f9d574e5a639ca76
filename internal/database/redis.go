package database

import (
	"context"
	"fmt"
	"net"

	"github.com/pulseboard/pulseboard/backend/go-services/internal/config"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a pinged client, or (nil, nil) when no host is configured.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s:%s: %w", cfg.Host, cfg.Port, err)
	}
	return client, nil
}
