package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySettingsStore(t *testing.T) {
	repo := NewMemorySettingsStore()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "categories_order_list", `["Dairy"]`))

		got, ok, err := repo.Get(ctx, "categories_order_list")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `["Dairy"]`, got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, ok, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("KeysAndDelete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "color_B", "2"))
		require.NoError(t, repo.Set(ctx, "color_A", "1"))

		keys, err := repo.Keys(ctx, "color_")
		require.NoError(t, err)
		assert.Equal(t, []string{"color_A", "color_B"}, keys)

		require.NoError(t, repo.Delete(ctx, "color_A", "color_B"))
		keys, err = repo.Keys(ctx, "color_")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("RateLimit", func(t *testing.T) {
		userID := int64(1)
		limit := 2
		window := 50 * time.Millisecond

		allowed, _ := repo.CheckRateLimit(ctx, userID, limit, window)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, userID, limit, window)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, userID, limit, window)
		assert.False(t, allowed)

		time.Sleep(60 * time.Millisecond)
		allowed, _ = repo.CheckRateLimit(ctx, userID, limit, window)
		assert.True(t, allowed)
	})
}
