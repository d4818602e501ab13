package repository

import (
	"context"
	"testing"

	"pantry/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSettingsStore(t *testing.T) {
	db, err := database.NewDB(":memory:", nil)
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLiteSettingsStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "icon_idx_Dairy", "1"))
	v, ok, err := store.Get(ctx, "icon_idx_Dairy")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	keys, err := store.Keys(ctx, "icon_idx_")
	require.NoError(t, err)
	assert.Equal(t, []string{"icon_idx_Dairy"}, keys)

	require.NoError(t, store.Delete(ctx, "icon_idx_Dairy"))
	_, ok, err = store.Get(ctx, "icon_idx_Dairy")
	require.NoError(t, err)
	assert.False(t, ok)
}
