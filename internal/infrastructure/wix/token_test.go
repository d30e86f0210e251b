package wix

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
)

func TestStaticTokenProvider(t *testing.T) {
	ctx := context.Background()
	provider := NewStaticTokenProvider(map[string]string{"acct-1": "token-1"})

	t.Run("returns the stored token", func(t *testing.T) {
		token, err := provider.AccessToken(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
	})

	t.Run("a missing account is a missing token", func(t *testing.T) {
		_, err := provider.AccessToken(ctx, "acct-unknown")
		assert.ErrorIs(t, err, shared.ErrMissingToken)
	})
}

func TestCachedTokenProvider(t *testing.T) {
	ctx := context.Background()
	delegate := NewStaticTokenProvider(map[string]string{"acct-1": "token-1"})

	t.Run("without a cache the delegate answers", func(t *testing.T) {
		provider := NewCachedTokenProvider(delegate, nil, time.Minute)
		token, err := provider.AccessToken(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
	})

	t.Run("an unreachable cache falls through to the delegate", func(t *testing.T) {
		rdb := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		t.Cleanup(func() { _ = rdb.Close() })

		provider := NewCachedTokenProvider(delegate, rdb, time.Minute)
		token, err := provider.AccessToken(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
	})

	t.Run("delegate errors surface unchanged", func(t *testing.T) {
		provider := NewCachedTokenProvider(delegate, nil, time.Minute)
		_, err := provider.AccessToken(ctx, "acct-unknown")
		assert.ErrorIs(t, err, shared.ErrMissingToken)
	})
}
