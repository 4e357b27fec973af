package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix  = "nutrameter:cache:"
	DefaultCacheTTL = 8 * time.Hour
	MinCacheTTL     = 6 * time.Hour
	MaxCacheTTL     = 12 * time.Hour
)

// EstimateCache remembers analysis results per image so a re-submitted photo
// does not cost another model call.
type EstimateCache interface {
	Get(ctx context.Context, key string) (*models.NutritionEstimate, bool, error)
	Set(ctx context.Context, key string, est *models.NutritionEstimate) error
}

// RedisCache stores JSON values under CacheKeyPrefix with a TTL clamped to
// 6-12 hours.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: clampTTL(ttl)}
}

func clampTTL(ttl time.Duration) time.Duration {
	if ttl < MinCacheTTL {
		return MinCacheTTL
	}
	if ttl > MaxCacheTTL {
		return MaxCacheTTL
	}
	return ttl
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.NutritionEstimate, bool, error) {
	val, err := c.client.Get(ctx, CacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var est models.NutritionEstimate
	if err := json.Unmarshal(val, &est); err != nil {
		return nil, false, err
	}
	return &est, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, est *models.NutritionEstimate) error {
	data, err := json.Marshal(est)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKeyPrefix+key, data, c.ttl).Err()
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}

// analysisCacheKey identifies an image by content, scoped to the provider
// since different models give different estimates.
func analysisCacheKey(provider, mimeType string, image []byte) string {
	sum := sha256.Sum256(image)
	return CacheKey("analysis:"+provider, mimeType+":"+hex.EncodeToString(sum[:]))
}
