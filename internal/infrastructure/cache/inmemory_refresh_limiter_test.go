package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRefreshLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("first request is granted and starts the cooldown", func(t *testing.T) {
		limiter := NewInMemoryRefreshLimiter()
		defer limiter.Close()

		allowed, err := limiter.Allow(ctx, "00123", time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = limiter.Allow(ctx, "00123", time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("different members do not share a window", func(t *testing.T) {
		limiter := NewInMemoryRefreshLimiter()
		defer limiter.Close()

		allowed, err := limiter.Allow(ctx, "00123", time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = limiter.Allow(ctx, "00456", time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("expired cooldown grants again", func(t *testing.T) {
		limiter := NewInMemoryRefreshLimiter()
		defer limiter.Close()

		allowed, err := limiter.Allow(ctx, "00123", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)

		time.Sleep(20 * time.Millisecond)

		allowed, err = limiter.Allow(ctx, "00123", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		limiter := NewInMemoryRefreshLimiter()
		require.NoError(t, limiter.Close())
		require.NoError(t, limiter.Close())
	})
}
