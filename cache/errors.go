package cache

import (
	"errors"

	"github.com/goliatone/go-kvcache/internal/cacheinfra"
)

// Conditions the engine degrades on. They are never returned from Engine
// methods; they are logged and kept as LastError for diagnostics.
var (
	ErrStoreUnavailable = errors.New("cache: store unavailable")
	ErrSerialization    = errors.New("cache: value cannot be serialized")
	ErrDeserialization  = errors.New("cache: stored entry cannot be deserialized")
	ErrExpired          = errors.New("cache: entry expired")
)

// ConfigError represents a configuration validation error.
type ConfigError = cacheinfra.ConfigError
