package cache

import (
	"context"
	"fmt"
	"time"

	"TubeFM/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the shared Redis client. It stays nil when Redis is not
// configured; every consumer in this package degrades to a no-op then.
var RedisClient *redis.Client

// ConnectRedis initializes the Redis connection.
func ConnectRedis(cfg *config.Config) error {
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

// CloseRedis closes the Redis connection.
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// TestRedis runs a basic set/get/del round trip.
func TestRedis() error {
	if RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}

	ctx := context.Background()

	if err := RedisClient.Set(ctx, "tubefm:selftest", "ok", 5*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	val, err := RedisClient.Get(ctx, "tubefm:selftest").Result()
	if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}
	if val != "ok" {
		return fmt.Errorf("unexpected value from Redis: got %s", val)
	}

	if _, err := RedisClient.Del(ctx, "tubefm:selftest").Result(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	return nil
}
