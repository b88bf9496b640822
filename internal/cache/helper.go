package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
)

// TTLs per key class.
const (
	PostTTL       = 2 * time.Minute
	CategoriesTTL = 5 * time.Minute
)

// PostKey builds the cache key for an anonymously-viewed post detail.
func PostKey(id uint) string {
	return fmt.Sprintf("post:%d", id)
}

// CategoriesKey is the cache key for the full category listing.
const CategoriesKey = "categories:all"

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which must populate
// dest), then stores the result with ttl. The key's class (the part before
// the first colon) labels the hit/miss metric. A Redis failure or an
// unreadable cached entry counts as a miss: the cache must never make a
// fetchable value unavailable.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	class := keyClass(key)

	found, err := GetJSON(ctx, key, dest)
	switch {
	case err == nil && found:
		observability.CacheRequests.WithLabelValues(class, "hit").Inc()
		return nil
	case err != nil:
		observability.CacheRequests.WithLabelValues(class, "error").Inc()
	default:
		observability.CacheRequests.WithLabelValues(class, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes keys from the cache, best-effort.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	_ = client.Del(ctx, keys...).Err()
}

func keyClass(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}
