package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

// RedisRepository stores each refresh session as JSON under "<prefix>rt:<token>"
// and indexes a user's tokens in the set "<prefix>user:<userID>" so every
// device can be signed out at once.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis-based session repository. Prefix may be empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) tokenKey(refresh string) string { return r.prefix + "rt:" + refresh }

func (r *RedisRepository) userKey(userID string) string { return r.prefix + "user:" + userID }

// Create stores the session and adds it to the user's index. The index expires
// with the newest session; stale members are dropped on read.
func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		// Redis rejects a zero TTL; keep the entry just long enough to be ignored
		ttl = time.Second
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.tokenKey(s.RefreshToken), b, ttl)
		p.SAdd(ctx, r.userKey(s.UserID), s.RefreshToken)
		p.Expire(ctx, r.userKey(s.UserID), ttl)
		return nil
	})
	return err
}

func (r *RedisRepository) load(ctx context.Context, refresh string) (*Session, error) {
	b, err := r.client.Get(ctx, r.tokenKey(refresh)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	s, err := r.load(ctx, refresh)
	if err != nil || s == nil {
		return nil, err
	}
	if s.Expired(time.Now().UTC()) {
		_ = r.remove(ctx, s)
		return nil, nil
	}
	return s, nil
}

func (r *RedisRepository) remove(ctx context.Context, s *Session) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.tokenKey(s.RefreshToken))
		p.SRem(ctx, r.userKey(s.UserID), s.RefreshToken)
		return nil
	})
	return err
}

func (r *RedisRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	s, err := r.load(ctx, refresh)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	return r.remove(ctx, s)
}

// DeleteByUser drops every session in the user's index and the index itself.
// It returns how many live sessions were removed.
func (r *RedisRepository) DeleteByUser(ctx context.Context, userID string) (int, error) {
	members, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, nil
	}
	var removed *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		removed = p.Del(ctx, lo.Map(members, func(rt string, _ int) string { return r.tokenKey(rt) })...)
		p.Del(ctx, r.userKey(userID))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(removed.Val()), nil
}
