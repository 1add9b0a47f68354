package cachekit

import (
	"container/list"
	"context"
	"errors"
	"iter"
	"log/slog"
	"sync"
)

const defaultEvictionBuffer = 16

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a bounded, thread-safe LRU cache.
// When the cache is at capacity, adding a new key evicts the least recently
// used entry first. Lookups through Get mark the entry as recently used;
// Peek does not.
//
// The key index and the recency list are guarded by a single mutex and
// updated together, so every operation observes them in a consistent state.
type Cache[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	recency  *list.List // Front = most recently used, Back = next eviction candidate
	mu       sync.Mutex

	loader         Loader[V]
	evictionBuffer int
	notifier       *notifier[K]
	logger         *slog.Logger
}

// New creates a cache holding at most capacity entries.
// Returns ErrInvalidCapacity if capacity is lower than one; a cache that can
// hold nothing cannot satisfy its own contract, so zero and negative
// capacities are rejected rather than treated as "evict everything".
func New[K comparable, V any](capacity int, opts ...Option[K, V]) (*Cache[K, V], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	c := &Cache[K, V]{
		capacity:       capacity,
		items:          make(map[K]*list.Element),
		recency:        list.New(),
		evictionBuffer: defaultEvictionBuffer,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.notifier = newNotifier[K](c.evictionBuffer)

	return c, nil
}

// Add inserts or replaces the value for key and marks it as most recently
// used. Replacing an existing key never fires an eviction notification.
// If the key is absent and the cache is full, the least recently used entry
// is evicted before the insert, so a sequence of adds at capacity evicts
// exactly one entry per call. Add always succeeds.
func (c *Cache[K, V]) Add(key K, value V) {
	c.mu.Lock()
	evicted, hasEvicted := c.insert(key, value)
	c.mu.Unlock()

	if hasEvicted {
		c.notifyEvicted(evicted)
	}
}

// Get returns the value for key and marks it as most recently used.
// If the key is absent, the default loader (see WithLoader) produces the
// value, which is then stored and returned; without a default loader Get
// fails with ErrMissingLoader and the cache is left unchanged.
//
// The loader runs while the cache lock is held: a slow loader stalls every
// other operation for its duration, and two concurrent misses on the same
// key both invoke the loader.
func (c *Cache[K, V]) Get(key K) (V, error) {
	return c.GetWith(key, nil)
}

// GetWith behaves like Get but uses the given loader for a miss instead of
// the default one. A nil loader falls back to the default.
func (c *Cache[K, V]) GetWith(key K, load Loader[V]) (V, error) {
	c.mu.Lock()

	if elem, ok := c.items[key]; ok {
		c.recency.MoveToFront(elem)
		value := elem.Value.(*entry[K, V]).value
		c.mu.Unlock()
		return value, nil
	}

	if load == nil {
		load = c.loader
	}
	if load == nil {
		c.mu.Unlock()
		var zero V
		return zero, ErrMissingLoader
	}

	if c.logger != nil {
		c.logger.Debug("cachekit: loading value for missing key", slog.Any("key", key))
	}
	value, err := load()
	if err != nil {
		c.mu.Unlock()
		var zero V
		return zero, errors.Join(ErrLoader, err)
	}

	evicted, hasEvicted := c.insert(key, value)
	c.mu.Unlock()

	if hasEvicted {
		c.notifyEvicted(evicted)
	}
	return value, nil
}

// Peek returns the value for key without marking it as recently used.
// Returns ErrKeyNotFound if the key is absent. Peek never invokes a loader.
func (c *Cache[K, V]) Peek(key K) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		return elem.Value.(*entry[K, V]).value, nil
	}

	var zero V
	return zero, ErrKeyNotFound
}

// Contains reports whether key is present without marking it as recently
// used.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Remove deletes key from the cache and fires an eviction notification for
// it. Removing an absent key is a no-op and returns false.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	removed := c.unlink(elem)
	c.mu.Unlock()

	c.notifyEvicted(removed)
	return true
}

// Len returns the current number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

// Capacity returns the configured maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// Resize changes the capacity. Shrinking below the current length evicts
// entries from the least recently used end, firing one notification per
// evicted key in least-recently-used-first order, until the length complies.
// Returns the number of evicted entries, or ErrInvalidCapacity if capacity
// is lower than one.
func (c *Cache[K, V]) Resize(capacity int) (int, error) {
	if capacity < 1 {
		return 0, ErrInvalidCapacity
	}

	c.mu.Lock()
	c.capacity = capacity
	var evicted []K
	for c.recency.Len() > capacity {
		evicted = append(evicted, c.unlink(c.recency.Back()))
	}
	c.mu.Unlock()

	c.notifyEvicted(evicted...)
	return len(evicted), nil
}

// Clear removes all entries, firing one eviction notification per key in
// least-recently-used-first order.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	evicted := make([]K, 0, c.recency.Len())
	for elem := c.recency.Back(); elem != nil; elem = c.recency.Back() {
		evicted = append(evicted, c.unlink(elem))
	}
	c.mu.Unlock()

	c.notifyEvicted(evicted...)
}

// Keys returns the keys in recency order, most recently used first.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.recency.Len())
	for elem := c.recency.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*entry[K, V]).key)
	}
	return keys
}

// All returns an iterator over all entries in recency order, most recently
// used first. Each iteration works on a snapshot taken when it starts, so
// the sequence is restartable and concurrent mutation can never corrupt the
// cache — but entries mutated after the snapshot are not reflected.
// Iterating does not mark entries as recently used.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		c.mu.Lock()
		snapshot := make([]entry[K, V], 0, c.recency.Len())
		for elem := c.recency.Front(); elem != nil; elem = elem.Next() {
			snapshot = append(snapshot, *elem.Value.(*entry[K, V]))
		}
		c.mu.Unlock()

		for _, ent := range snapshot {
			if !yield(ent.key, ent.value) {
				return
			}
		}
	}
}

// OnEviction registers a callback invoked with the key of every evicted
// entry (capacity pressure, Remove, Resize, Clear — never replacement).
// Callbacks run in registration order, after the cache lock is released but
// before the evicting operation returns, so they may safely call back into
// the cache. The returned function removes the callback.
func (c *Cache[K, V]) OnEviction(fn func(key K)) func() {
	return c.notifier.onEviction(fn)
}

// Evictions returns a channel-based subscription delivering evicted keys.
// Delivery is non-blocking: when the subscription's buffer is full, keys
// are dropped for that subscriber. The subscription is closed automatically
// when ctx is cancelled, or explicitly via its Close method.
func (c *Cache[K, V]) Evictions(ctx context.Context) *Subscription[K] {
	return c.notifier.subscribe(ctx)
}

// Must be called with the lock held. Returns the evicted key, if any.
func (c *Cache[K, V]) insert(key K, value V) (K, bool) {
	if elem, ok := c.items[key]; ok {
		c.recency.MoveToFront(elem)
		elem.Value.(*entry[K, V]).value = value
		var zero K
		return zero, false
	}

	var evicted K
	var hasEvicted bool
	if c.recency.Len() >= c.capacity {
		if tail := c.recency.Back(); tail != nil {
			evicted = c.unlink(tail)
			hasEvicted = true
		}
	}

	c.items[key] = c.recency.PushFront(&entry[K, V]{key: key, value: value})
	return evicted, hasEvicted
}

// Must be called with the lock held. Removes elem from both the list and
// the index and returns its key.
func (c *Cache[K, V]) unlink(elem *list.Element) K {
	ent := c.recency.Remove(elem).(*entry[K, V])
	delete(c.items, ent.key)
	return ent.key
}

func (c *Cache[K, V]) notifyEvicted(keys ...K) {
	for _, key := range keys {
		if c.logger != nil {
			c.logger.Debug("cachekit: entry evicted", slog.Any("key", key))
		}
		c.notifier.notify(key)
	}
}
