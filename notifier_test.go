package cachekit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cachekit"
)

func TestCache_OnEviction(t *testing.T) {
	t.Run("callbacks run in registration order", func(t *testing.T) {
		c, err := cachekit.New[string, int](1)
		require.NoError(t, err)

		var order []string
		c.OnEviction(func(key string) { order = append(order, "first:"+key) })
		c.OnEviction(func(key string) { order = append(order, "second:"+key) })

		c.Add("a", 1)
		c.Add("b", 2)

		assert.Equal(t, []string{"first:a", "second:a"}, order)
	})

	t.Run("remove fires a notification", func(t *testing.T) {
		c, err := cachekit.New[string, int](3)
		require.NoError(t, err)

		var evicted []string
		c.OnEviction(func(key string) { evicted = append(evicted, key) })

		c.Add("a", 1)
		c.Remove("a")

		assert.Equal(t, []string{"a"}, evicted)
	})

	t.Run("removing an absent key fires nothing", func(t *testing.T) {
		c, err := cachekit.New[string, int](3)
		require.NoError(t, err)

		var evictions int
		c.OnEviction(func(string) { evictions++ })

		c.Remove("missing")

		assert.Zero(t, evictions)
	})

	t.Run("replacement fires nothing", func(t *testing.T) {
		c, err := cachekit.New[string, int](2)
		require.NoError(t, err)

		var evictions int
		c.OnEviction(func(string) { evictions++ })

		c.Add("a", 1)
		c.Add("a", 2)
		c.Add("a", 3)

		assert.Zero(t, evictions)
	})

	t.Run("shrink notifies LRU-first", func(t *testing.T) {
		c, err := cachekit.New[string, int](4)
		require.NoError(t, err)

		c.Add("a", 1)
		c.Add("b", 2)
		c.Add("c", 3)
		c.Add("d", 4)

		var evicted []string
		c.OnEviction(func(key string) { evicted = append(evicted, key) })

		n, err := c.Resize(1)
		require.NoError(t, err)

		assert.Equal(t, 3, n)
		assert.Equal(t, []string{"a", "b", "c"}, evicted)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		c, err := cachekit.New[string, int](3)
		require.NoError(t, err)

		var evictions int
		remove := c.OnEviction(func(string) { evictions++ })

		c.Add("a", 1)
		c.Remove("a")
		assert.Equal(t, 1, evictions)

		remove()

		c.Add("b", 2)
		c.Remove("b")
		assert.Equal(t, 1, evictions)
	})

	t.Run("callback may call back into the cache", func(t *testing.T) {
		c, err := cachekit.New[string, int](2)
		require.NoError(t, err)

		var sawLen int
		c.OnEviction(func(string) { sawLen = c.Len() })

		c.Add("a", 1)
		c.Add("b", 2)
		c.Add("c", 3)

		assert.Equal(t, 2, sawLen)
	})
}

func TestCache_Evictions(t *testing.T) {
	t.Run("delivers evicted keys", func(t *testing.T) {
		c, err := cachekit.New[string, int](1)
		require.NoError(t, err)

		sub := c.Evictions(context.Background())
		defer sub.Close()

		c.Add("a", 1)
		c.Add("b", 2)
		c.Add("c", 3)

		// Notification happens before the evicting Add returns, so the
		// buffered keys are already readable here.
		assert.Equal(t, "a", <-sub.C())
		assert.Equal(t, "b", <-sub.C())
	})

	t.Run("drops keys when the buffer is full", func(t *testing.T) {
		c, err := cachekit.New[string, int](1, cachekit.WithEvictionBuffer[string, int](1))
		require.NoError(t, err)

		sub := c.Evictions(context.Background())
		defer sub.Close()

		c.Add("a", 1)
		c.Add("b", 2) // evicts "a", fills the buffer
		c.Add("c", 3) // evicts "b", dropped

		assert.Equal(t, "a", <-sub.C())
		assert.Empty(t, sub.C(), "the overflowed key must have been dropped")
	})

	t.Run("independent subscribers each receive", func(t *testing.T) {
		c, err := cachekit.New[string, int](1)
		require.NoError(t, err)

		first := c.Evictions(context.Background())
		defer first.Close()
		second := c.Evictions(context.Background())
		defer second.Close()

		c.Add("a", 1)
		c.Add("b", 2)

		assert.Equal(t, "a", <-first.C())
		assert.Equal(t, "a", <-second.C())
	})

	t.Run("context cancellation closes the subscription", func(t *testing.T) {
		c, err := cachekit.New[string, int](3)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		sub := c.Evictions(ctx)

		cancel()

		assert.Eventually(t, func() bool {
			select {
			case _, open := <-sub.C():
				return !open
			default:
				return false
			}
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		c, err := cachekit.New[string, int](3)
		require.NoError(t, err)

		sub := c.Evictions(context.Background())
		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())

		// Evicting after close must not panic
		c.Add("a", 1)
		c.Remove("a")
	})

	t.Run("works alongside callbacks", func(t *testing.T) {
		c, err := cachekit.New[string, int](3)
		require.NoError(t, err)

		var fromCallback string
		c.OnEviction(func(key string) { fromCallback = key })

		sub := c.Evictions(context.Background())
		defer sub.Close()

		c.Add("a", 1)
		c.Remove("a")

		assert.Equal(t, "a", fromCallback)
		assert.Equal(t, "a", <-sub.C())
	})
}
