package usercache

import "github.com/goliatone/go-kvcache/cache"

// KeyFavorites is the logical key of the favorite widget ids.
const KeyFavorites = "favorite_widgets"

// Favorites is an insertion-ordered set of widget ids.
type Favorites struct {
	view *cache.Typed[[]string]
}

// NewFavorites binds a Favorites set to engine.
func NewFavorites(engine *cache.Engine, opts ...Option) *Favorites {
	o := newOptions(0, opts)
	return &Favorites{view: typed[[]string](engine, KeyFavorites, o)}
}

// Key returns the logical key.
func (f *Favorites) Key() string { return f.view.Key() }

// Get returns the stored ids in insertion order.
func (f *Favorites) Get() []string {
	ids, ok := f.view.Get()
	if !ok || ids == nil {
		return []string{}
	}
	return ids
}

// Set replaces the stored ids. Duplicates are dropped.
func (f *Favorites) Set(ids []string) bool {
	ids = dedupeStrings(ids)
	if ids == nil {
		ids = []string{}
	}
	return f.view.Set(ids)
}

// Contains reports whether id is a favorite.
func (f *Favorites) Contains(id string) bool {
	return contains(f.Get(), id)
}

// Add appends id when it is absent and returns the set. An already present
// id leaves the store untouched and reports true.
func (f *Favorites) Add(id string) ([]string, bool) {
	ids := f.Get()
	if contains(ids, id) {
		return ids, true
	}

	updated := append(ids, id)
	return updated, f.Set(updated)
}

// Remove drops id and returns the set.
func (f *Favorites) Remove(id string) ([]string, bool) {
	updated := without(f.Get(), id)
	return updated, f.Set(updated)
}

// Toggle removes id when present and appends it otherwise.
func (f *Favorites) Toggle(id string) ([]string, bool) {
	if f.Contains(id) {
		return f.Remove(id)
	}
	return f.Add(id)
}
