package cachekit

import "log/slog"

// Option configures a Cache during construction.
type Option[K comparable, V any] func(*Cache[K, V])

// WithLoader sets the default loader used by Get when a key is absent.
// A per-call loader passed to GetWith takes precedence over it.
func WithLoader[K comparable, V any](load Loader[V]) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.loader = load
	}
}

// WithEvictionBuffer sets the channel buffer size used by subscriptions
// returned from Evictions. A minimum of 1 is enforced to keep sends
// non-blocking. The default is 16.
func WithEvictionBuffer[K comparable, V any](size int) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.evictionBuffer = size
	}
}

// WithLogger sets a logger for debug-level records of evictions and loader
// invocations, ignoring nil loggers for safety. Without it the cache is
// silent.
func WithLogger[K comparable, V any](log *slog.Logger) Option[K, V] {
	return func(c *Cache[K, V]) {
		if log != nil {
			c.logger = log
		}
	}
}
