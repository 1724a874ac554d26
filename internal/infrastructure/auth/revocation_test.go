package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationList(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	list := NewMemoryRevocationList()
	list.now = func() time.Time { return now }

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(time.Minute)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation ends with the token's lifetime")
	assert.NotContains(t, list.until, "jti-1")

	require.NoError(t, list.Revoke(ctx, "jti-2", 0))
	assert.NotContains(t, list.until, "jti-2", "already expired tokens are not stored")
}

func TestMemoryRevocationList_PrunesExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	list := NewMemoryRevocationList()
	list.now = func() time.Time { return now }

	for i := 0; i < pruneEvery-1; i++ {
		require.NoError(t, list.Revoke(ctx, fmt.Sprintf("short-%d", i), time.Second))
	}
	now = now.Add(time.Hour)
	require.NoError(t, list.Revoke(ctx, "long", time.Hour))

	assert.Len(t, list.until, 1)
	assert.Contains(t, list.until, "long")
}
