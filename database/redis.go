package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vinnymaker/stockapp/internal/config"
	"github.com/vinnymaker/stockapp/pkg/utils/zaplogger"
)

// ConnectRedis connects to Redis. Redis is optional, a nil client is returned
// when no URL is configured and callers fall back to the database.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		zaplogger.Info(config.SingleLine)
		zaplogger.Info("Redis not configured, quote cache disabled")
		return nil, nil
	}

	zaplogger.Info(config.SingleLine)
	zaplogger.Info("Connecting to Redis")

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	redisClient := redis.NewClient(redisOpts)

	// Check Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	zaplogger.Info("  * connected")

	return redisClient, nil
}
