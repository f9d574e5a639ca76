package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw upstream bodies for the provider's freshness window.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// credentialParams never take part in a cache key.
var credentialParams = []string{"apiKey", "api_key"}

// CacheKey derives a stable key from the provider and request URL with
// credentials stripped, so rotating a key does not fork the cache.
func CacheKey(provider, rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		q := u.Query()
		for _, p := range credentialParams {
			q.Del(p)
		}
		u.RawQuery = q.Encode()
		rawURL = u.String()
	}
	sum := sha256.Sum256([]byte(provider + "|" + rawURL))
	return hex.EncodeToString(sum[:])
}

// RedisCache implements Cache on top of Redis string keys with TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed cache. Prefix may be empty.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "upstream:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.prefix+key, body, ttl).Err()
}
