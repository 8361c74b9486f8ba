package usercache

import "github.com/goliatone/go-kvcache/cache"

// KeyLanguage is the logical key of the language setting.
const KeyLanguage = "language"

// Language is a UI locale.
type Language string

const (
	LanguageRU Language = "ru"
	LanguageEN Language = "en"
)

// DefaultLanguage is returned when no valid language is stored.
const DefaultLanguage = LanguageRU

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LanguageRU || l == LanguageEN
}

// LanguageSetting stores the selected language.
type LanguageSetting struct {
	view *cache.Typed[Language]
}

// NewLanguage binds a LanguageSetting to engine.
func NewLanguage(engine *cache.Engine, opts ...Option) *LanguageSetting {
	o := newOptions(0, opts)
	return &LanguageSetting{view: typed[Language](engine, KeyLanguage, o)}
}

// Key returns the logical key.
func (s *LanguageSetting) Key() string { return s.view.Key() }

// Get returns the stored language, falling back to DefaultLanguage.
func (s *LanguageSetting) Get() Language {
	if l, ok := s.view.Get(); ok && l.Valid() {
		return l
	}
	return DefaultLanguage
}

// Set stores l. Unsupported languages are rejected without writing.
func (s *LanguageSetting) Set(l Language) bool {
	if !l.Valid() {
		return false
	}
	return s.view.Set(l)
}
