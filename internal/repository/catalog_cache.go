package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"practice-service/internal/metrics"
	"practice-service/internal/models"

	redis_v9 "github.com/redis/go-redis/v9"
)

const catalogKeyPrefix = "practice:catalog:"

var errCacheMiss = errors.New("cache miss")

// CatalogSource is the uncached question bank.
type CatalogSource interface {
	ListActiveQuestions(ctx context.Context, category string) ([]models.Question, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	Categories(ctx context.Context) ([]string, error)
}

type cacheBackend interface {
	get(ctx context.Context, key string) ([]byte, error)
	set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	deletePrefix(ctx context.Context, prefix string) (int, error)
}

// CatalogCache is a read-through Redis cache in front of the question bank.
// Redis failures are logged and the source is read directly.
type CatalogCache struct {
	source  CatalogSource
	backend cacheBackend
	ttl     time.Duration
}

func NewCatalogCache(source CatalogSource, client *redis_v9.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{source: source, backend: &redisBackend{client: client}, ttl: ttl}
}

func (c *CatalogCache) ListActiveQuestions(ctx context.Context, category string) ([]models.Question, error) {
	key := catalogKeyPrefix + "active:" + category
	if category == "" {
		key = catalogKeyPrefix + "active:*all"
	}
	var questions []models.Question
	if c.load(ctx, key, &questions) {
		return questions, nil
	}

	questions, err := c.source.ListActiveQuestions(ctx, category)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, questions)
	return questions, nil
}

func (c *CatalogCache) Categories(ctx context.Context) ([]string, error) {
	key := catalogKeyPrefix + "categories"
	var categories []string
	if c.load(ctx, key, &categories) {
		return categories, nil
	}

	categories, err := c.source.Categories(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, categories)
	return categories, nil
}

// FindByIDs always reads the source so retired questions still resolve.
func (c *CatalogCache) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	return c.source.FindByIDs(ctx, ids)
}

// Invalidate drops every cached catalog entry.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	n, err := c.backend.deletePrefix(ctx, catalogKeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	log.Printf("Invalidated %d catalog cache entries", n)
	return nil
}

func (c *CatalogCache) load(ctx context.Context, key string, out any) bool {
	raw, err := c.backend.get(ctx, key)
	if err != nil {
		if errors.Is(err, errCacheMiss) {
			metrics.CatalogCache.WithLabelValues("miss").Inc()
		} else {
			metrics.CatalogCache.WithLabelValues("error").Inc()
			log.Printf("Catalog cache read failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		metrics.CatalogCache.WithLabelValues("error").Inc()
		log.Printf("Discarding corrupt catalog cache entry %s: %v", key, err)
		return false
	}
	metrics.CatalogCache.WithLabelValues("hit").Inc()
	return true
}

func (c *CatalogCache) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("Failed to encode catalog cache entry %s: %v", key, err)
		return
	}
	if err := c.backend.set(ctx, key, raw, c.ttl); err != nil {
		log.Printf("Catalog cache write failed for %s: %v", key, err)
	}
}

type redisBackend struct {
	client *redis_v9.Client
}

func (b *redisBackend) get(ctx context.Context, key string) ([]byte, error) {
	raw, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis_v9.Nil) {
		return nil, errCacheMiss
	}
	return raw, err
}

func (b *redisBackend) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

func (b *redisBackend) deletePrefix(ctx context.Context, prefix string) (int, error) {
	var keys []string
	iter := b.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := b.client.Del(ctx, keys...).Result()
	return int(n), err
}
