package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cuefm/config"
)

// RedisClient is the shared client. Nil when redis is not configured; every
// cache in this package degrades to a no-op then.
var RedisClient *redis.Client

// ConnectRedis initializes the client when REDIS_HOST is set. Without it
// this is a no-op and the cache layer stays disabled.
func ConnectRedis(cfg *config.Config) error {
	if cfg.RedisHost == "" {
		return nil
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		RedisClient = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// CloseRedis closes the client if one was opened.
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}
