package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newFavorites(t *testing.T) (*Favorites, *LocalStore, *MockKV) {
	t.Helper()
	kv := NewMockKV()
	catalog := NewLocalStore(kv, zaptest.NewLogger(t))
	require.NoError(t, catalog.ResetToSeed(context.Background()))
	return NewFavorites(kv, catalog, zaptest.NewLogger(t)), catalog, kv
}

func TestToggle_IsInvolutive(t *testing.T) {
	favs, _, _ := newFavorites(t)
	ctx := context.Background()

	on, err := favs.Toggle(ctx, "seed-3")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, favs.IsFavorite(ctx, "seed-3"))

	off, err := favs.Toggle(ctx, "seed-3")
	require.NoError(t, err)
	assert.False(t, off)
	assert.False(t, favs.IsFavorite(ctx, "seed-3"))
}

func TestList_PreservesCatalogOrderAndDropsStaleIDs(t *testing.T) {
	favs, catalog, _ := newFavorites(t)
	ctx := context.Background()

	for _, id := range []string{"seed-5", "gone", "seed-1", "seed-3"} {
		_, err := favs.Toggle(ctx, id)
		require.NoError(t, err)
	}
	ok, err := catalog.Delete(ctx, "seed-3")
	require.NoError(t, err)
	require.True(t, ok)

	list := favs.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "seed-1", list[0].ID)
	assert.Equal(t, "seed-5", list[1].ID)
}

func TestFavorites_ReadFailures(t *testing.T) {
	favs, _, kv := newFavorites(t)
	ctx := context.Background()
	kv.ReadErr = errors.New("unavailable")

	assert.False(t, favs.IsFavorite(ctx, "seed-1"))
	assert.Empty(t, favs.List(ctx))

	_, err := favs.Toggle(ctx, "seed-1")
	assert.ErrorContains(t, err, "unavailable")
}

func TestFavorites_CorruptSetIsReplaced(t *testing.T) {
	favs, _, kv := newFavorites(t)
	ctx := context.Background()
	kv.Put(KeyFavorites, "[oops")

	assert.False(t, favs.IsFavorite(ctx, "seed-1"))

	on, err := favs.Toggle(ctx, "seed-1")
	require.NoError(t, err)
	assert.True(t, on)

	raw, _ := kv.Raw(KeyFavorites)
	assert.JSONEq(t, `["seed-1"]`, raw)
}

func TestFavorites_WriteFailurePropagates(t *testing.T) {
	favs, _, kv := newFavorites(t)
	kv.WriteErr = errors.New("quota exceeded")

	_, err := favs.Toggle(context.Background(), "seed-1")
	assert.ErrorContains(t, err, "quota exceeded")
}
