package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenDenylist(t *testing.T) {
	mr, client := newTestRedis(t)
	denylist := NewTokenDenylist(client)
	ctx := context.Background()

	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, denylist.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// 随令牌过期自动清理
	mr.FastForward(2 * time.Minute)
	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenDenylist_EdgeCases(t *testing.T) {
	mr, client := newTestRedis(t)
	denylist := NewTokenDenylist(client)
	ctx := context.Background()

	assert.ErrorIs(t, denylist.Revoke(ctx, "", time.Minute), ErrInvalidToken)

	require.NoError(t, denylist.Revoke(ctx, "expired", 0))
	assert.False(t, mr.Exists(revokedTokenPrefix+"expired"))

	mr.Close()
	_, err := denylist.IsRevoked(ctx, "jti")
	assert.Error(t, err)
}
