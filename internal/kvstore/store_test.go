package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the Store contract against any backend. In
// this file it runs against the in-memory adapter only; no test here
// runs it against the Valkey adapter.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "missing-key")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set-if-absent only succeeds once", func(t *testing.T) {
		ok, err := store.SetIfAbsentTTL(ctx, "holder:a", "token-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.SetIfAbsentTTL(ctx, "holder:a", "token-2", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		val, err := store.Get(ctx, "holder:a")
		require.NoError(t, err)
		assert.Equal(t, "token-1", val)
	})

	t.Run("compare and delete is ownership checked", func(t *testing.T) {
		_, err := store.SetIfAbsentTTL(ctx, "holder:b", "token-1", time.Minute)
		require.NoError(t, err)

		ok, err := store.CompareAndDelete(ctx, "holder:b", "wrong-token")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.CompareAndDelete(ctx, "holder:b", "token-1")
		require.NoError(t, err)
		assert.True(t, ok)

		exists, err := store.Exists(ctx, "holder:b")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("list push/pop preserves FIFO order oldest at tail", func(t *testing.T) {
		key := "queue:c"
		require.NoError(t, store.ListPushHead(ctx, key, "first"))
		require.NoError(t, store.ListPushHead(ctx, key, "second"))
		require.NoError(t, store.ListPushHead(ctx, key, "third"))

		n, err := store.ListLen(ctx, key)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		tail, err := store.ListIndex(ctx, key, 0)
		require.NoError(t, err)
		assert.Equal(t, "first", tail)

		val, err := store.ListPopTail(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "first", val)

		val, err = store.ListPopTail(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", val)
	})

	t.Run("list remove drops a zombie entry from the middle", func(t *testing.T) {
		key := "queue:d"
		require.NoError(t, store.ListPushHead(ctx, key, "c"))
		require.NoError(t, store.ListPushHead(ctx, key, "b"))
		require.NoError(t, store.ListPushHead(ctx, key, "a"))

		removed, err := store.ListRemove(ctx, key, "b", 1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, removed)

		n, err := store.ListLen(ctx, key)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("incr with expiry only sets TTL on first increment", func(t *testing.T) {
		key := "ratelimit:e"
		v, err := store.IncrWithExpiry(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, 1, v)

		v, err = store.IncrWithExpiry(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, 2, v)
	})
}

func TestMemoryAdapter_Contract(t *testing.T) {
	runStoreContract(t, NewMemoryAdapter())
}

func TestMemoryAdapter_ExpiryIsHonored(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()

	ok, err := store.SetIfAbsentTTL(ctx, "k", "v", time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(5 * time.Millisecond)

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err = store.SetIfAbsentTTL(ctx, "k", "v2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired entry must not block a new set-if-absent")
}
