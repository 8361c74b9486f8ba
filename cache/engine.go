package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goliatone/go-kvcache/codec"
	"github.com/google/uuid"
)

// probeKeyPrefix marks the sentinel written to check store availability.
const probeKeyPrefix = "__kvcache_probe__"

// Engine is a namespaced TTL cache over a persistent Store.
//
// Every public method degrades instead of failing: store errors, encode
// errors and corrupt entries turn into false, zero or a miss, are logged at
// warn level and are kept as LastError.
type Engine struct {
	store      Store
	codec      codec.Codec
	prefix     string
	defaultTTL time.Duration
	now        func() time.Time
	logger     *log.Logger

	mu        sync.Mutex
	available bool
	lastErr   error
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the source of entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger degraded operations are reported to.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCodec overrides the codec selected by Config.
func WithCodec(c codec.Codec) Option {
	return func(e *Engine) {
		if c != nil {
			e.codec = c
		}
	}
}

// New creates an Engine writing through store. The store is not probed until
// the first operation.
func New(store Store, cfg Config, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, &ConfigError{Field: "store", Message: "cannot be nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := cfg.newCodec()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:      store,
		codec:      c,
		prefix:     cfg.Prefix,
		defaultTTL: cfg.DefaultTTL,
		now:        time.Now,
		logger:     log.Default().WithPrefix("kvcache"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewWithDefaults creates an Engine using DefaultConfig.
func NewWithDefaults(store Store, opts ...Option) (*Engine, error) {
	return New(store, DefaultConfig(), opts...)
}

// Prefix returns the namespace prefix.
func (e *Engine) Prefix() string { return e.prefix }

// DefaultTTL returns the ttl applied when Set receives zero.
func (e *Engine) DefaultTTL() time.Duration { return e.defaultTTL }

// Codec returns the envelope codec.
func (e *Engine) Codec() codec.Codec { return e.codec }

// LastError returns the most recent condition the engine degraded on.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Set stores value under key. A zero ttl applies the default TTL and a
// negative ttl (NoExpiry) stores the entry without expiry. It returns false
// when the store is unavailable or the value cannot be encoded.
func (e *Engine) Set(key string, value any, ttl time.Duration) bool {
	if !e.ensureAvailable() {
		return false
	}

	now := e.now()
	env := codec.Envelope{Value: value, Timestamp: now.UnixMilli()}
	if ttl == 0 {
		ttl = e.defaultTTL
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl).UnixMilli()
		if expiresAt <= env.Timestamp {
			expiresAt = env.Timestamp + 1
		}
		env.ExpiresAt = &expiresAt
	}

	data, err := e.encode(env)
	if err != nil {
		e.degrade("set", key, err)
		return false
	}

	if err := e.store.Set(e.physicalKey(key), string(data)); err != nil {
		e.storeFailed("set", key, err)
		return false
	}
	return true
}

// Get decodes the live entry under key into dest, which must be a pointer.
// Missing, expired and corrupt entries are misses; expired and corrupt
// entries are removed from the store as a side effect.
func (e *Engine) Get(key string, dest any) bool {
	raw, ok := e.lookup(key)
	if !ok {
		return false
	}

	if err := e.codec.Unmarshal(raw, dest); err != nil {
		e.degrade("get", key, fmt.Errorf("%w: %v", ErrDeserialization, err))
		return false
	}
	return true
}

// Get returns the live value under key as a T.
func Get[T any](e *Engine, key string) (T, bool) {
	var value T
	if !e.Get(key, &value) {
		var zero T
		return zero, false
	}
	return value, true
}

// Has reports whether a live entry exists under key. It applies the same
// expiry check as Get, so an expired or corrupt entry is removed and reported
// absent, but the value itself is not decoded.
func (e *Engine) Has(key string) bool {
	_, ok := e.lookup(key)
	return ok
}

// Remove deletes key.
func (e *Engine) Remove(key string) bool {
	if !e.ensureAvailable() {
		return false
	}
	if err := e.store.Remove(e.physicalKey(key)); err != nil {
		e.storeFailed("remove", key, err)
		return false
	}
	return true
}

// Clear deletes every key under the engine's namespace and nothing else.
func (e *Engine) Clear() bool {
	if !e.ensureAvailable() {
		return false
	}

	keys, err := e.physicalKeys()
	if err != nil {
		return false
	}

	ok := true
	for _, pk := range keys {
		if err := e.store.Remove(pk); err != nil {
			e.storeFailed("clear", pk, err)
			ok = false
		}
	}
	return ok
}

// Keys returns the logical keys stored under the namespace, expired or not.
func (e *Engine) Keys() []string {
	if !e.ensureAvailable() {
		return []string{}
	}

	keys, err := e.physicalKeys()
	if err != nil {
		return []string{}
	}

	logical := make([]string, len(keys))
	for i, pk := range keys {
		logical[i] = strings.TrimPrefix(pk, e.prefix)
	}
	return logical
}

// Size returns the summed length in bytes of every stored entry under the
// namespace. Expired entries count until they are removed.
func (e *Engine) Size() int {
	if !e.ensureAvailable() {
		return 0
	}

	keys, err := e.physicalKeys()
	if err != nil {
		return 0
	}

	total := 0
	for _, pk := range keys {
		data, ok, err := e.store.Get(pk)
		if err != nil {
			e.storeFailed("size", pk, err)
			return 0
		}
		if ok {
			total += len(data)
		}
	}
	return total
}

// Cleanup removes every expired or undecodable entry under the namespace and
// returns how many were removed.
func (e *Engine) Cleanup() int {
	if !e.ensureAvailable() {
		return 0
	}

	keys, err := e.physicalKeys()
	if err != nil {
		return 0
	}

	nowMs := e.now().UnixMilli()
	removed := 0
	for _, pk := range keys {
		data, ok, err := e.store.Get(pk)
		if err != nil {
			e.storeFailed("cleanup", pk, err)
			return removed
		}
		if !ok {
			continue
		}

		expiresAt, err := codec.ReadExpiry(e.codec, []byte(data))
		if err != nil {
			e.degrade("cleanup", pk, fmt.Errorf("%w: %v", ErrDeserialization, err))
		} else if !codec.Expired(expiresAt, nowMs) {
			continue
		}

		if e.drop(pk) {
			removed++
		}
	}

	e.logger.Debug("cleanup finished", "prefix", e.prefix, "removed", removed)
	return removed
}

// Stats summarizes the namespace without modifying it.
type Stats struct {
	Keys    int `json:"keys" yaml:"keys"`
	Expired int `json:"expired" yaml:"expired"`
	Corrupt int `json:"corrupt" yaml:"corrupt"`
	Bytes   int `json:"bytes" yaml:"bytes"`
}

// Stats counts live, expired and corrupt entries and their total size.
func (e *Engine) Stats() Stats {
	var st Stats
	if !e.ensureAvailable() {
		return st
	}

	keys, err := e.physicalKeys()
	if err != nil {
		return st
	}

	nowMs := e.now().UnixMilli()
	for _, pk := range keys {
		data, ok, err := e.store.Get(pk)
		if err != nil {
			e.storeFailed("stats", pk, err)
			return Stats{}
		}
		if !ok {
			continue
		}

		st.Keys++
		st.Bytes += len(data)

		expiresAt, err := codec.ReadExpiry(e.codec, []byte(data))
		switch {
		case err != nil:
			st.Corrupt++
		case codec.Expired(expiresAt, nowMs):
			st.Expired++
		}
	}
	return st
}

func (e *Engine) physicalKey(key string) string {
	return e.prefix + key
}

// lookup returns the still-encoded value of the live entry under key.
func (e *Engine) lookup(key string) ([]byte, bool) {
	if !e.ensureAvailable() {
		return nil, false
	}

	pk := e.physicalKey(key)
	data, ok, err := e.store.Get(pk)
	if err != nil {
		e.storeFailed("get", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	dec, err := e.codec.Decode([]byte(data))
	if err != nil {
		e.degrade("get", key, fmt.Errorf("%w: %v", ErrDeserialization, err))
		e.drop(pk)
		return nil, false
	}

	if dec.Expired(e.now().UnixMilli()) {
		e.logger.Debug("entry expired", "key", key)
		e.record(fmt.Errorf("%w: %q", ErrExpired, key))
		e.drop(pk)
		return nil, false
	}

	return dec.Value, true
}

func (e *Engine) physicalKeys() ([]string, error) {
	var (
		keys []string
		err  error
	)

	if scanner, ok := e.store.(PrefixScanner); ok {
		keys, err = scanner.KeysWithPrefix(e.prefix)
	} else {
		var all []string
		all, err = e.store.Keys()
		for _, k := range all {
			if strings.HasPrefix(k, e.prefix) {
				keys = append(keys, k)
			}
		}
	}

	if err != nil {
		e.storeFailed("keys", e.prefix, err)
		return nil, err
	}

	sort.Strings(keys)
	return keys, nil
}

func (e *Engine) drop(pk string) bool {
	if err := e.store.Remove(pk); err != nil {
		e.storeFailed("remove", pk, err)
		return false
	}
	return true
}

func (e *Engine) encode(env codec.Envelope) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%w: %v", ErrSerialization, r)
		}
	}()

	data, err = e.codec.Encode(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}

// ensureAvailable probes the store once and trusts the result until an
// operation fails, after which the next call probes again.
func (e *Engine) ensureAvailable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.available {
		return true
	}

	probe := probeKeyPrefix + uuid.NewString()
	err := e.store.Set(probe, probe)
	if err == nil {
		err = e.store.Remove(probe)
	}
	if err != nil {
		e.lastErr = fmt.Errorf("%w: probe: %v", ErrStoreUnavailable, err)
		e.logger.Warn("store unavailable", "err", err)
		return false
	}

	e.available = true
	e.logger.Debug("store probe succeeded", "prefix", e.prefix)
	return true
}

func (e *Engine) storeFailed(op, key string, err error) {
	e.mu.Lock()
	e.available = false
	e.lastErr = fmt.Errorf("%w: %s %q: %v", ErrStoreUnavailable, op, key, err)
	e.mu.Unlock()

	e.logger.Warn("store operation failed", "op", op, "key", key, "err", err)
}

func (e *Engine) degrade(op, key string, err error) {
	e.record(err)
	e.logger.Warn("cache operation degraded", "op", op, "key", key, "err", err)
}

func (e *Engine) record(err error) {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
}
