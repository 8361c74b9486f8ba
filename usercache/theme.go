package usercache

import "github.com/goliatone/go-kvcache/cache"

// KeyTheme is the logical key of the theme setting.
const KeyTheme = "theme"

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is returned when no valid theme is stored.
const DefaultTheme = ThemeLight

// Valid reports whether t is one of the supported themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// ThemeSetting stores the selected theme.
type ThemeSetting struct {
	view *cache.Typed[Theme]
}

// NewTheme binds a ThemeSetting to engine.
func NewTheme(engine *cache.Engine, opts ...Option) *ThemeSetting {
	o := newOptions(0, opts)
	return &ThemeSetting{view: typed[Theme](engine, KeyTheme, o)}
}

// Key returns the logical key.
func (s *ThemeSetting) Key() string { return s.view.Key() }

// Get returns the stored theme, or DefaultTheme when nothing valid is stored.
func (s *ThemeSetting) Get() Theme {
	if t, ok := s.view.Get(); ok && t.Valid() {
		return t
	}
	return DefaultTheme
}

// Set stores t. Unsupported themes are rejected without writing.
func (s *ThemeSetting) Set(t Theme) bool {
	if !t.Valid() {
		return false
	}
	return s.view.Set(t)
}

// Toggle flips between light and dark and returns the new theme.
func (s *ThemeSetting) Toggle() (Theme, bool) {
	next := ThemeDark
	if s.Get() == ThemeDark {
		next = ThemeLight
	}
	return next, s.Set(next)
}
