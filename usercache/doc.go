// Package usercache provides typed caches for user-facing state built on a
// cache.Engine.
//
// # Overview
//
// Every cache in this package binds one logical key of an Engine to one value
// type and adds a small policy on top of it:
//
//   - Preferences (user_settings): a settings map with shallow-merge updates
//   - AuthTokens (auth_tokens): access/refresh pair stored for one hour
//   - SavedFilters (saved_filters): named filters kept in a single map
//   - ThemeSetting (theme): light or dark, defaulting to light
//   - LanguageSetting (language): ru or en, defaulting to ru
//   - SearchHistory (search_history): most-recent-first, deduplicated, capped at 10
//   - Favorites (favorite_widgets): an ordered set of widget ids with toggle
//
// # Basic Usage
//
//	engine, _ := cache.NewWithDefaults(store)
//
//	history := usercache.NewSearchHistory(engine)
//	history.Add("btc")
//	history.Add("eth")
//	recent, _ := history.Add("btc") // ["btc", "eth"]
//
//	theme := usercache.NewTheme(engine)
//	next, ok := theme.Toggle() // "dark", true
//
// # Scoping
//
// WithScope suffixes the logical key with normalized segments, so several users
// can share one namespace:
//
//	theme := usercache.NewTheme(engine, usercache.WithScope("user-42"))
//	theme.Key() // "theme::user_42"
//
// # Read-Modify-Write
//
// Update, Add, Remove and Toggle read the stored value, derive a new one and
// write it back. They return the derived value together with the result of
// the write, so a caller can keep working from the returned value when the
// store is unavailable; the cause is available from Engine.LastError. The
// sequence is not atomic across processes sharing a store.
package usercache
