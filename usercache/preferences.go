package usercache

import (
	"maps"

	"github.com/goliatone/go-kvcache/cache"
)

// KeyPreferences is the logical key of the preferences map.
const KeyPreferences = "user_settings"

// Settings is a free-form preferences map.
type Settings = map[string]any

// Preferences stores user settings as one map.
type Preferences struct {
	view *cache.Typed[Settings]
}

// NewPreferences binds a Preferences cache to engine. Entries use the engine
// default ttl unless WithTTL is given.
func NewPreferences(engine *cache.Engine, opts ...Option) *Preferences {
	o := newOptions(0, opts)
	return &Preferences{view: typed[Settings](engine, KeyPreferences, o)}
}

// Key returns the logical key.
func (p *Preferences) Key() string { return p.view.Key() }

// Get returns the stored settings, or an empty map on a miss.
func (p *Preferences) Get() Settings {
	settings, ok := p.view.Get()
	if !ok || settings == nil {
		return Settings{}
	}
	return settings
}

// Set replaces the stored settings.
func (p *Preferences) Set(settings Settings) bool {
	if settings == nil {
		settings = Settings{}
	}
	return p.view.Set(settings)
}

// Update shallow-merges updates into the stored settings and returns the
// merged map and whether it was written. Keys in updates win.
func (p *Preferences) Update(updates Settings) (Settings, bool) {
	merged := p.Get()
	maps.Copy(merged, updates)
	return merged, p.Set(merged)
}

// Remove deletes the stored settings.
func (p *Preferences) Remove() bool { return p.view.Remove() }
