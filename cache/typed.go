package cache

import "time"

// Typed binds one logical key of an Engine to one value type.
type Typed[T any] struct {
	engine *Engine
	key    string
	ttl    time.Duration
}

// NewTyped returns a typed view of key. A zero ttl uses the engine default.
func NewTyped[T any](engine *Engine, key string, ttl time.Duration) *Typed[T] {
	return &Typed[T]{engine: engine, key: key, ttl: ttl}
}

// Key returns the logical key.
func (t *Typed[T]) Key() string { return t.key }

// Get returns the stored value.
func (t *Typed[T]) Get() (T, bool) {
	return Get[T](t.engine, t.key)
}

// GetOr returns the stored value or def on a miss.
func (t *Typed[T]) GetOr(def T) T {
	if v, ok := t.Get(); ok {
		return v
	}
	return def
}

// Set stores value with the view's ttl.
func (t *Typed[T]) Set(value T) bool {
	return t.engine.Set(t.key, value, t.ttl)
}

// Has reports whether a live value is stored.
func (t *Typed[T]) Has() bool {
	return t.engine.Has(t.key)
}

// Remove deletes the stored value.
func (t *Typed[T]) Remove() bool {
	return t.engine.Remove(t.key)
}

// Update reads the current value, applies fn and writes the result back.
// The sequence is not atomic with respect to other writers of the same key.
func (t *Typed[T]) Update(fn func(current T, found bool) T) (T, bool) {
	current, found := t.Get()
	next := fn(current, found)
	return next, t.Set(next)
}
