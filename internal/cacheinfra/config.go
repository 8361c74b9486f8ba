package cacheinfra

import (
	"time"

	"github.com/viccon/sturdyc"
)

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// SturdycConfig holds the configuration for the in-memory store backed by sturdyc.
type SturdycConfig struct {
	// Capacity defines the maximum number of entries that the store can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of shards for concurrent access.
	// Must be greater than 0. Default: 64
	NumShards int

	// TTL is the retention of the underlying sturdyc client. It is a safety
	// net for abandoned keys, entry expiry itself is decided by the engine
	// envelope, so this must be longer than any TTL handed to the engine.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the store reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often sturdyc scans for entries older than TTL.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultSturdycConfig returns a SturdycConfig suited to client-side state.
func DefaultSturdycConfig() SturdycConfig {
	return SturdycConfig{
		Capacity:           10000,
		NumShards:          64,
		TTL:                30 * 24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c SturdycConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// ToSturdycOptions converts the optional parts of the config to sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage go to sturdyc.New directly.
func (c SturdycConfig) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// SQLConfig configures the SQLite store.
type SQLConfig struct {
	// DSN is handed to the sqlite3 driver, e.g. "file:/var/lib/app/cache.db".
	DSN string

	// Timeout bounds every statement.
	Timeout time.Duration
}

// DefaultSQLConfig returns a SQLConfig pointing at kvcache.db in the working directory.
func DefaultSQLConfig() SQLConfig {
	return SQLConfig{
		DSN:     "file:kvcache.db",
		Timeout: 5 * time.Second,
	}
}

// Validate checks if the configuration values are valid.
func (c SQLConfig) Validate() error {
	if c.DSN == "" {
		return &ConfigError{Field: "DSN", Message: "cannot be empty"}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "Timeout", Message: "must be greater than 0"}
	}
	return nil
}

// BadgerConfig configures the Badger store.
type BadgerConfig struct {
	// Dir holds the Badger value log and LSM tree. Ignored when InMemory is set.
	Dir string

	// InMemory runs Badger without touching disk.
	InMemory bool
}

// Validate checks if the configuration values are valid.
func (c BadgerConfig) Validate() error {
	if !c.InMemory && c.Dir == "" {
		return &ConfigError{Field: "Dir", Message: "cannot be empty unless InMemory is set"}
	}
	return nil
}
