package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kelibin/secretaria/internal/config"
	"github.com/kelibin/secretaria/internal/pkg/logger"
)

// NewRedisClient connects to the configured Redis server and verifies it answers
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Session.Redis.Addr,
		Password: cfg.Session.Redis.Password,
		DB:       cfg.Session.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info().Str("addr", cfg.Session.Redis.Addr).Msg("Redis connection established")
	return client, nil
}
