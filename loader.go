package cachekit

// Loader produces a value for a key that is absent from the cache.
//
// The function takes no arguments because the caller already knows which key
// it is loading for; closures capture whatever context the load needs:
//
//	user, err := users.GetWith(id, func() (User, error) {
//		return fetchUser(id)
//	})
//
// A loader is expected to be fast and side-effect free. It is invoked while
// the cache lock is held, so a slow loader stalls every other cache
// operation for its duration (see the Get documentation).
type Loader[V any] func() (V, error)
