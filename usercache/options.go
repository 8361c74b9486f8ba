package usercache

import (
	"time"

	"github.com/goliatone/go-kvcache/cache"
)

// Option customizes a derived cache.
type Option func(*options)

type options struct {
	scope []any
	ttl   time.Duration
	limit int
}

// WithScope suffixes the cache key with scope segments, e.g. a user id.
func WithScope(parts ...any) Option {
	return func(o *options) {
		o.scope = append(o.scope, parts...)
	}
}

// WithTTL overrides the ttl entries are written with. Zero keeps the
// cache's own default.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl != 0 {
			o.ttl = ttl
		}
	}
}

// WithLimit overrides the maximum length of capped lists.
func WithLimit(limit int) Option {
	return func(o *options) {
		if limit > 0 {
			o.limit = limit
		}
	}
}

func newOptions(ttl time.Duration, opts []Option) options {
	o := options{ttl: ttl}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func typed[T any](engine *cache.Engine, base string, o options) *cache.Typed[T] {
	return cache.NewTyped[T](engine, cache.ScopedKey(base, o.scope...), o.ttl)
}

// dedupeStrings removes duplicates while preserving order.
func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func without(values []string, drop string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}
