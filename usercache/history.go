package usercache

import "github.com/goliatone/go-kvcache/cache"

const (
	// KeySearchHistory is the logical key of the search history.
	KeySearchHistory = "search_history"

	// SearchHistoryLimit is the default number of queries kept.
	SearchHistoryLimit = 10
)

// SearchHistory is a capped most-recent-first list of distinct queries.
type SearchHistory struct {
	view  *cache.Typed[[]string]
	limit int
}

// NewSearchHistory binds a SearchHistory to engine. WithLimit overrides the cap.
func NewSearchHistory(engine *cache.Engine, opts ...Option) *SearchHistory {
	o := newOptions(0, append([]Option{WithLimit(SearchHistoryLimit)}, opts...))
	return &SearchHistory{view: typed[[]string](engine, KeySearchHistory, o), limit: o.limit}
}

// Key returns the logical key.
func (h *SearchHistory) Key() string { return h.view.Key() }

// Limit returns the maximum number of queries kept.
func (h *SearchHistory) Limit() int { return h.limit }

// Get returns the stored queries, most recent first.
func (h *SearchHistory) Get() []string {
	history, ok := h.view.Get()
	if !ok || history == nil {
		return []string{}
	}
	return history
}

// Set replaces the stored history as given.
func (h *SearchHistory) Set(history []string) bool {
	if history == nil {
		history = []string{}
	}
	return h.view.Set(history)
}

// Add moves query to the front, dropping any earlier occurrence, truncates the
// list to the limit and returns it with the result of the write.
func (h *SearchHistory) Add(query string) ([]string, bool) {
	rest := without(h.Get(), query)

	updated := make([]string, 0, len(rest)+1)
	updated = append(updated, query)
	updated = append(updated, rest...)
	if len(updated) > h.limit {
		updated = updated[:h.limit]
	}

	return updated, h.Set(updated)
}

// Clear stores an empty history.
func (h *SearchHistory) Clear() bool {
	return h.Set([]string{})
}
