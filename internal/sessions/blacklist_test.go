package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBlacklist_RevokeExpires(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	bl := NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "access-token-1", 2*time.Second))
	ok, err := bl.IsRevoked(ctx, "access-token-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, m.Exists("blacklist:access:access-token-1"))

	m.FastForward(3 * time.Second)
	ok, err = bl.IsRevoked(ctx, "access-token-1")
	require.NoError(t, err)
	require.False(t, ok)

	// already-expired tokens are not stored
	require.NoError(t, bl.Revoke(ctx, "stale", 0))
	require.False(t, m.Exists("blacklist:access:stale"))
}

func TestBlacklist_NoClientIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, bl := range []*Blacklist{NewBlacklist(nil), nil} {
		require.NoError(t, bl.Revoke(ctx, "t", time.Second))
		ok, err := bl.IsRevoked(ctx, "t")
		require.NoError(t, err)
		require.False(t, ok)
	}
}
