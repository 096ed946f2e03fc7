package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "runs/a.zip", []byte("zip"), "application/zip"))

	data, err := ReadAll(ctx, store, "runs/a.zip")
	require.NoError(t, err)
	assert.Equal(t, []byte("zip"), data)
	assert.Equal(t, "application/zip", store.ContentType("runs/a.zip"))

	require.NoError(t, store.Delete(ctx, "runs/a.zip"))
	_, err = ReadAll(ctx, store, "runs/a.zip")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	store.PutAt("b/2.zip", []byte("2"), "application/zip", old)
	store.PutAt("b/1.zip", []byte("1"), "application/zip", old)
	store.PutAt("template/current.png", []byte("png"), "image/png", old)

	objects, err := store.List(ctx, "b/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "b/1.zip", objects[0].Key)
	assert.Equal(t, old, objects[1].LastModified)
}
