package cachekit

import "errors"

// Package-specific errors
var (
	// ErrInvalidCapacity is returned when a cache is created or resized with
	// a capacity lower than one.
	ErrInvalidCapacity = errors.New("cachekit: capacity must be positive")

	// ErrMissingLoader is returned by Get when the key is absent and neither
	// a per-call loader nor a default loader is available.
	ErrMissingLoader = errors.New("cachekit: no loader available for missing key")

	// ErrKeyNotFound is returned by Peek when the key is absent.
	ErrKeyNotFound = errors.New("cachekit: key not found")

	// ErrLoader wraps errors returned by a loader. The underlying loader
	// error is joined and can be inspected with errors.Is/As.
	ErrLoader = errors.New("cachekit: loader failed")

	// ErrInvalidConfig is returned when environment variables cannot be
	// parsed into the cache configuration.
	ErrInvalidConfig = errors.New("cachekit: invalid configuration")
)
