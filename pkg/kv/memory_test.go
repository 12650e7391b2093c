package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/kv"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("SetGet", func(t *testing.T) {
		store := kv.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("MissingKey", func(t *testing.T) {
		store := kv.NewMemoryStore()
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		store := kv.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
		require.NoError(t, store.Delete(ctx, "k"))
		require.NoError(t, store.Delete(ctx, "k"))

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})

	t.Run("ExpiryEvaluatedOnRead", func(t *testing.T) {
		now := time.Now()
		store := kv.NewMemoryStoreWithClock(func() time.Time { return now })
		require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))

		_, err := store.Get(ctx, "k")
		require.NoError(t, err)

		now = now.Add(2 * time.Hour)
		_, err = store.Get(ctx, "k")
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		store := kv.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "k", []byte("abc"), 0))

		first, err := store.Get(ctx, "k")
		require.NoError(t, err)
		first[0] = 'x'

		second, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), second)
	})
}
