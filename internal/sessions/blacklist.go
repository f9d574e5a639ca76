package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:access:"

// Blacklist records revoked access tokens in Redis until they would have
// expired anyway. A Blacklist without a client accepts every token.
type Blacklist struct {
	client *redis.Client
}

// NewBlacklist returns a blacklist backed by client, which may be nil.
func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

// Revoke stores token for ttl. Non-positive TTLs are ignored.
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if b == nil || b.client == nil || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
}

// IsRevoked reports whether token was revoked and has not yet expired.
func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}
	n, err := b.client.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
