package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*RedisRepository, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return NewRedisRepository(redis.NewClient(&redis.Options{Addr: m.Addr()}), "test:session:"), m
}

func newSession(refresh, userID string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{RefreshToken: refresh, UserID: userID, CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

func TestRedisRepository_SessionLifecycle(t *testing.T) {
	repo, m := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("r1", "user-1", time.Hour)))
	assert.True(t, m.Exists("test:session:rt:r1"))
	members, err := m.Members("test:session:user:user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, members)

	got, err := repo.GetByRefresh(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)

	// deleting one session also unindexes it
	require.NoError(t, repo.DeleteByRefresh(ctx, "r1"))
	got, err = repo.GetByRefresh(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, m.Exists("test:session:user:user-1"))

	require.NoError(t, repo.DeleteByRefresh(ctx, "never-issued"))
}

func TestRedisRepository_TTLExpiry(t *testing.T) {
	repo, m := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("r2", "user-2", time.Second)))
	got, err := repo.GetByRefresh(ctx, "r2")
	require.NoError(t, err)
	require.NotNil(t, got)

	m.FastForward(2 * time.Second)

	got, err = repo.GetByRefresh(ctx, "r2")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, m.Exists("test:session:user:user-2"))
}

func TestRedisRepository_DeleteByUser(t *testing.T) {
	repo, m := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("laptop", "ada", time.Hour)))
	require.NoError(t, repo.Create(ctx, newSession("phone", "ada", time.Hour)))
	require.NoError(t, repo.Create(ctx, newSession("other", "bob", time.Hour)))

	n, err := repo.DeleteByUser(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, rt := range []string{"laptop", "phone"} {
		got, err := repo.GetByRefresh(ctx, rt)
		require.NoError(t, err)
		assert.Nil(t, got, rt)
	}
	assert.False(t, m.Exists("test:session:user:ada"))

	got, err := repo.GetByRefresh(ctx, "other")
	require.NoError(t, err)
	assert.NotNil(t, got)

	n, err = repo.DeleteByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}
