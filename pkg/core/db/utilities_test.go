package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreOpenWhenEmpty(t *testing.T) {
	store := newMemoryStore(nil)
	ctx := context.Background()

	assert.True(t, store.IsAllowed(ctx, 1))
	assert.True(t, store.IsAllowed(ctx, 999))

	// The first explicit grant closes the bot.
	require.NoError(t, store.Allow(ctx, 1))
	assert.True(t, store.IsAllowed(ctx, 1))
	assert.False(t, store.IsAllowed(ctx, 999))
}

func TestMemoryStoreSeededIsRestricted(t *testing.T) {
	store := newMemoryStore([]int64{10, 20})
	ctx := context.Background()

	assert.True(t, store.IsAllowed(ctx, 10))
	assert.False(t, store.IsAllowed(ctx, 30))

	require.NoError(t, store.Allow(ctx, 30))
	assert.True(t, store.IsAllowed(ctx, 30))

	require.NoError(t, store.Deny(ctx, 10))
	assert.False(t, store.IsAllowed(ctx, 10))
}

func TestMemoryStoreList(t *testing.T) {
	store := newMemoryStore([]int64{30, 10, 20})

	users, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, users)
}
