// Package cachestore wraps sturdyc as the bounded, sharded value store
// behind the query cache. The query package owns entry lifecycle and
// subscription bookkeeping; this package only stores fetched payloads and
// lets the configured TTL act as the retention window for entries nobody
// subscribes to anymore.
package cachestore

import (
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the sturdyc-backed store configuration.
type Config struct {
	// Capacity defines the maximum number of entries the store can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of shards for concurrent access.
	// Higher values improve concurrency at a memory cost. Must be
	// greater than 0.
	NumShards int

	// Retention is how long a payload is kept after its last write.
	// Entries past retention are evicted; a later read refetches.
	// Must be greater than 0.
	Retention time.Duration

	// EvictionPercentage is the share of entries evicted when the store
	// hits capacity. Must be between 1 and 100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are scanned for.
	// Zero uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with defaults sized for a client-side
// process holding a few hundred list and detail queries.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		Retention:          5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.Retention <= 0 {
		return &ConfigError{Field: "Retention", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "cachestore config error in field " + e.Field + ": " + e.Message
}

// Store is a bounded key/value store for fetched payloads.
type Store struct {
	client *sturdyc.Client[any]
}

// New validates cfg and builds a Store backed by a sturdyc client.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.Retention,
		cfg.EvictionPercentage,
		opts...,
	)
	return &Store{client: client}, nil
}

// Get returns the payload stored under key, if any.
func (s *Store) Get(key string) (any, bool) {
	return s.client.Get(key)
}

// Set stores a payload under key, resetting its retention clock.
func (s *Store) Set(key string, value any) {
	s.client.Set(key, value)
}

// Delete removes the payload stored under key.
func (s *Store) Delete(key string) {
	s.client.Delete(key)
}
