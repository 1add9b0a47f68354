package cachekit

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds environment-driven cache settings.
type Config struct {
	// Capacity is the maximum number of entries the cache holds.
	Capacity int `env:"CACHEKIT_CAPACITY" envDefault:"1024"`

	// EvictionBuffer is the channel buffer size for eviction subscriptions.
	EvictionBuffer int `env:"CACHEKIT_EVICTION_BUFFER" envDefault:"16"`
}

var dotenvOnce sync.Once

// LoadConfig parses cache settings from environment variables.
// It first attempts to load the default .env file; a missing file is not an
// error. Parse failures are returned joined with ErrInvalidConfig.
func LoadConfig() (Config, error) {
	dotenvOnce.Do(func() {
		// Ignore errors - the .env file might not exist and that's ok
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

// NewFromEnv creates a cache configured from environment variables.
// Options are applied after the environment-derived settings, so an explicit
// WithEvictionBuffer overrides CACHEKIT_EVICTION_BUFFER.
//
// Example:
//
//	// CACHEKIT_CAPACITY=500
//	sessions, err := cachekit.NewFromEnv[string, Session]()
func NewFromEnv[K comparable, V any](opts ...Option[K, V]) (*Cache[K, V], error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	all := append([]Option[K, V]{WithEvictionBuffer[K, V](cfg.EvictionBuffer)}, opts...)
	return New[K, V](cfg.Capacity, all...)
}
