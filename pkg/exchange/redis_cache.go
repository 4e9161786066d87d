package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores the entry as JSON under a single key that expires with
// the cache TTL.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisCache connects to the redis server at addr.
func NewRedisCache(addr, key string, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return NewRedisCacheWithClient(rdb, key, ttl)
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, key string, ttl time.Duration) *RedisCache {
	if key == "" {
		key = constants.DefaultRedisKey
	}
	if ttl <= 0 {
		ttl = constants.DefaultRateCacheTTL
	}
	return &RedisCache{client: client, key: key, ttl: ttl}
}

func (r *RedisCache) Load(ctx context.Context) (CacheEntry, bool, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return CacheEntry{}, false, nil
	}
	if err != nil {
		return CacheEntry{}, false, fmt.Errorf("redis get %s: %w", r.key, err)
	}

	var entry CacheEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return CacheEntry{}, false, fmt.Errorf("decode cached rate: %w", err)
	}
	return entry, true, nil
}

func (r *RedisCache) Store(ctx context.Context, entry CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached rate: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Close releases the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
