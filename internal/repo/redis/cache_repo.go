package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by GetJSON when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

type CacheRepo struct {
	client *redis.Client
	prefix string
}

func NewCacheRepo(client *redis.Client) *CacheRepo {
	return &CacheRepo{client: client, prefix: "cache:"}
}

func (r *CacheRepo) GetJSON(ctx context.Context, key string, dst any) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("get cache key: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode cache value: %w", err)
	}
	return nil
}

func (r *CacheRepo) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set cache key: %w", err)
	}
	return nil
}

func (r *CacheRepo) Delete(ctx context.Context, keys ...string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, r.prefix+key)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}
	return nil
}
