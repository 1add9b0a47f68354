// Package cachekit provides a bounded, thread-safe, generic LRU
// (Least Recently Used) cache with a pluggable loader for cache misses and
// multi-subscriber eviction notifications.
//
// The cache evicts the least recently used entry when it reaches its
// configured capacity, making it suitable for keeping a working set in
// memory without unbounded growth.
//
// # Key Features
//
//   - Generic implementation supporting any comparable key type and any value type
//   - Thread-safe operations with mutex-based synchronization
//   - LRU eviction performed before insert, exactly one eviction per add at capacity
//   - Loader fallback: cache misses are filled by a default or per-call loader
//   - Eviction notifications via synchronous callbacks or buffered channels
//   - Environment-based configuration with sensible defaults
//   - O(1) Add, Get, Peek, and Remove
//
// # Usage
//
// Create a cache with a capacity and use it:
//
//	c, err := cachekit.New[string, User](1024)
//	if err != nil {
//		// Handle error
//	}
//
//	c.Add("user:123", user)
//
//	// Get marks the entry as recently used
//	user, err := c.Get("user:123")
//
//	// Peek reads without touching recency
//	user, err = c.Peek("user:123")
//
// # Loader Fallback
//
// A loader produces values for missing keys. Configure a default loader at
// construction, or pass one per call:
//
//	c, _ := cachekit.New[string, Profile](100,
//		cachekit.WithLoader(func() (Profile, error) {
//			return defaultProfile(), nil
//		}),
//	)
//
//	profile, err := c.GetWith(id, func() (Profile, error) {
//		return fetchProfile(id)
//	})
//
// Get on a missing key with no loader available fails with
// [ErrMissingLoader]. The loader runs while the cache lock is held, so a
// slow loader stalls all other cache operations for its duration; there is
// no deduplication of concurrent loads for the same key.
//
// # Eviction Notifications
//
// Observers receive the key of every entry that leaves the cache through
// capacity pressure, Remove, Resize, or Clear. Replacing the value of an
// existing key is a touch, not an eviction, and fires nothing.
//
//	remove := c.OnEviction(func(key string) {
//		releaseResources(key)
//	})
//	defer remove()
//
// Or consume evictions as a stream:
//
//	sub := c.Evictions(ctx)
//	for key := range sub.C() {
//		log.Printf("evicted %s", key)
//	}
//
// Observers are invoked after the cache lock is released but before the
// evicting operation returns. Evictions caused by a single operation are
// reported in least-recently-used-first order. Channel delivery is
// non-blocking: a subscriber whose buffer is full misses keys instead of
// stalling the cache.
//
// # Thread Safety
//
// All operations are safe for concurrent use. A single mutex guards the key
// index and the recency list together, so every operation sees the two
// structures in a consistent state. Iteration via All works on a snapshot
// and never observes partial mutations.
package cachekit
