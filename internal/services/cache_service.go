package services

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService is a thin Redis wrapper used to cache WooCommerce responses.
// When REDIS_URL is unset the service degrades to a no-op so the proxy
// endpoints keep working without a cache.
type CacheService struct {
	client *redis.Client
}

// NewCacheService connects to Redis using REDIS_URL, or returns a disabled
// cache when the variable is missing
func NewCacheService() *CacheService {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		log.Println("REDIS_URL not set, response caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("Warning: invalid REDIS_URL, caching disabled: %v", err)
		return &CacheService{}
	}

	return &CacheService{client: redis.NewClient(opts)}
}

// NewCacheServiceWithClient wraps an existing client (used by tests)
func NewCacheServiceWithClient(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

// Enabled reports whether a Redis backend is connected
func (s *CacheService) Enabled() bool {
	return s.client != nil
}

// Get fetches a cached value; the second return is false on miss or when
// the cache is disabled
func (s *CacheService) Get(ctx context.Context, key string) (string, bool) {
	if s.client == nil {
		return "", false
	}
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Warning: cache get %s failed: %v", key, err)
		}
		return "", false
	}
	return val, true
}

// Set stores a value with a TTL; failures are logged only
func (s *CacheService) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if s.client == nil {
		return
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("Warning: cache set %s failed: %v", key, err)
	}
}

// Delete drops a key; failures are logged only
func (s *CacheService) Delete(ctx context.Context, key string) {
	if s.client == nil {
		return
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Printf("Warning: cache delete %s failed: %v", key, err)
	}
}
