package cache

import (
	"time"

	"github.com/goliatone/go-kvcache/codec"
	"github.com/goliatone/go-kvcache/internal/cacheinfra"
)

const (
	// DefaultPrefix namespaces keys written with DefaultConfig.
	DefaultPrefix = "analytics_dashboard_"

	// DefaultTTL is applied when Set is called with a zero ttl.
	DefaultTTL = 24 * time.Hour

	// NoExpiry passed as ttl stores an entry without expiresAt.
	NoExpiry time.Duration = -1
)

// Config exposes engine configuration options.
type Config struct {
	// Prefix is prepended to every logical key. It must be non-empty so that
	// engines sharing one store stay isolated.
	Prefix string

	// DefaultTTL applies to Set calls with a zero ttl.
	DefaultTTL time.Duration

	// Codec names the envelope serialization: "json" (default) or "msgpack".
	Codec string

	// CompressionLevel enables zstd compression of stored envelopes when > 0.
	CompressionLevel int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Prefix:     DefaultPrefix,
		DefaultTTL: DefaultTTL,
		Codec:      codec.NameJSON,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.Prefix == "" {
		return &ConfigError{Field: "Prefix", Message: "cannot be empty"}
	}

	if c.DefaultTTL <= 0 {
		return &ConfigError{Field: "DefaultTTL", Message: "must be greater than 0"}
	}

	switch c.Codec {
	case "", codec.NameJSON, codec.NameMsgpack:
	default:
		return &ConfigError{Field: "Codec", Message: "must be json or msgpack"}
	}

	if c.CompressionLevel < 0 || c.CompressionLevel > 22 {
		return &ConfigError{Field: "CompressionLevel", Message: "must be between 0 and 22"}
	}

	return nil
}

func (c Config) newCodec() (codec.Codec, error) {
	return codec.Lookup(c.Codec, c.CompressionLevel)
}

// MemoryStoreConfig configures the in-process store. Entries older than TTL
// are dropped by the store itself, so TTL must exceed every engine TTL.
type MemoryStoreConfig struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// DefaultMemoryStoreConfig returns a MemoryStoreConfig populated with sensible defaults.
func DefaultMemoryStoreConfig() MemoryStoreConfig {
	cfg := cacheinfra.DefaultSturdycConfig()
	return MemoryStoreConfig{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}

func (c MemoryStoreConfig) toInternal() cacheinfra.SturdycConfig {
	return cacheinfra.SturdycConfig{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

// Validate checks whether the configuration values are valid.
func (c MemoryStoreConfig) Validate() error {
	return c.toInternal().Validate()
}

// SQLiteStoreConfig configures the SQLite store.
type SQLiteStoreConfig struct {
	DSN     string
	Timeout time.Duration
}

// DefaultSQLiteStoreConfig returns a SQLiteStoreConfig populated with sensible defaults.
func DefaultSQLiteStoreConfig() SQLiteStoreConfig {
	cfg := cacheinfra.DefaultSQLConfig()
	return SQLiteStoreConfig{DSN: cfg.DSN, Timeout: cfg.Timeout}
}

// Validate checks whether the configuration values are valid.
func (c SQLiteStoreConfig) Validate() error {
	return cacheinfra.SQLConfig{DSN: c.DSN, Timeout: c.Timeout}.Validate()
}

// BadgerStoreConfig configures the Badger store.
type BadgerStoreConfig struct {
	Dir      string
	InMemory bool
}

// Validate checks whether the configuration values are valid.
func (c BadgerStoreConfig) Validate() error {
	return cacheinfra.BadgerConfig{Dir: c.Dir, InMemory: c.InMemory}.Validate()
}
