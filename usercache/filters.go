package usercache

import "github.com/goliatone/go-kvcache/cache"

// KeySavedFilters is the logical key of the saved filter map.
const KeySavedFilters = "saved_filters"

// Filter is the default filter shape: arbitrary JSON-like criteria.
type Filter = map[string]any

// SavedFilters keeps named filters of type F in a single stored map.
type SavedFilters[F any] struct {
	view *cache.Typed[map[string]F]
}

// NewSavedFilters binds a SavedFilters cache to engine.
func NewSavedFilters[F any](engine *cache.Engine, opts ...Option) *SavedFilters[F] {
	o := newOptions(0, opts)
	return &SavedFilters[F]{view: typed[map[string]F](engine, KeySavedFilters, o)}
}

// Key returns the logical key.
func (s *SavedFilters[F]) Key() string { return s.view.Key() }

// Get returns the stored filters, or an empty map on a miss.
func (s *SavedFilters[F]) Get() map[string]F {
	filters, ok := s.view.Get()
	if !ok || filters == nil {
		return map[string]F{}
	}
	return filters
}

// Set replaces every stored filter.
func (s *SavedFilters[F]) Set(filters map[string]F) bool {
	if filters == nil {
		filters = map[string]F{}
	}
	return s.view.Set(filters)
}

// Add stores filter under name, replacing an existing filter of that name,
// and returns the updated map and whether it was written.
func (s *SavedFilters[F]) Add(name string, filter F) (map[string]F, bool) {
	updated := s.Get()
	updated[name] = filter
	return updated, s.Set(updated)
}

// Remove deletes the filter called name and returns the updated map.
func (s *SavedFilters[F]) Remove(name string) (map[string]F, bool) {
	updated := s.Get()
	delete(updated, name)
	return updated, s.Set(updated)
}

// Clear deletes every stored filter.
func (s *SavedFilters[F]) Clear() bool { return s.view.Remove() }
