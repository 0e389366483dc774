package db

import (
	"context"
	"log"
	"time"

	"practice-service/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns a client, or nil when caching is disabled. An
// unreachable server is logged but not fatal; cache reads fall through.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		log.Println("Redis cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("Error connecting to Redis at %s: %v", cfg.Address, err)
	} else {
		log.Printf("Connected to Redis at %s", cfg.Address)
	}
	return client
}
