package wordlist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lexiduel/lexiduel/pkg/duelcore"
)

const defaultWordTTL = 12 * time.Hour

// RedisCache stores word lists as JSON blobs keyed by theme.
type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisCache creates a cache; ttl <= 0 uses the default.
func NewRedisCache(redisClient *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultWordTTL
	}
	return &RedisCache{redis: redisClient, ttl: ttl}
}

func (c *RedisCache) key(themeID uuid.UUID) string {
	return fmt.Sprintf("wordlist:%s", themeID.String())
}

// Get returns the cached list, or (nil, nil) on miss.
func (c *RedisCache) Get(ctx context.Context, themeID uuid.UUID) ([]duelcore.Question, error) {
	data, err := c.redis.Get(ctx, c.key(themeID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get word list: %w", err)
	}

	var words []duelcore.Question
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("unmarshal word list: %w", err)
	}
	return words, nil
}

// Set stores the list for the cache TTL.
func (c *RedisCache) Set(ctx context.Context, themeID uuid.UUID, words []duelcore.Question) error {
	data, err := json.Marshal(words)
	if err != nil {
		return fmt.Errorf("marshal word list: %w", err)
	}
	return c.redis.Set(ctx, c.key(themeID), data, c.ttl).Err()
}
