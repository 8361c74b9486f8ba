package di

import (
	"io"

	"github.com/goliatone/go-kvcache/cache"
	"github.com/goliatone/go-kvcache/usercache"
)

// Supported storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config describes everything the container builds: the storage backend, the
// engine on top of it and the derived caches.
type Config struct {
	Engine  cache.Config
	Backend string
	Memory  cache.MemoryStoreConfig
	SQLite  cache.SQLiteStoreConfig
	Badger  cache.BadgerStoreConfig
}

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Engine:  cache.DefaultConfig(),
		Backend: BackendMemory,
		Memory:  cache.DefaultMemoryStoreConfig(),
		SQLite:  cache.DefaultSQLiteStoreConfig(),
	}
}

// Validate checks the engine configuration and the settings of the selected
// backend only.
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}

	switch c.Backend {
	case BackendMemory:
		if err := c.Memory.Validate(); err != nil {
			return err
		}
		// the memory store drops entries on its own ttl, which would cut the
		// engine default short
		if c.Memory.TTL < c.Engine.DefaultTTL {
			return &cache.ConfigError{Field: "Memory.TTL", Message: "must not be shorter than Engine.DefaultTTL"}
		}
	case BackendSQLite:
		return c.SQLite.Validate()
	case BackendBadger:
		return c.Badger.Validate()
	default:
		return &cache.ConfigError{Field: "Backend", Message: "must be memory, sqlite or badger"}
	}
	return nil
}

// Caches groups the derived caches bound to one engine and scope.
type Caches struct {
	Preferences   *usercache.Preferences
	AuthTokens    *usercache.AuthTokens
	SavedFilters  *usercache.SavedFilters[usercache.Filter]
	Theme         *usercache.ThemeSetting
	Language      *usercache.LanguageSetting
	SearchHistory *usercache.SearchHistory
	Favorites     *usercache.Favorites
}

// NewCaches binds every derived cache to engine with the same options.
func NewCaches(engine *cache.Engine, opts ...usercache.Option) Caches {
	return Caches{
		Preferences:   usercache.NewPreferences(engine, opts...),
		AuthTokens:    usercache.NewAuthTokens(engine, opts...),
		SavedFilters:  usercache.NewSavedFilters[usercache.Filter](engine, opts...),
		Theme:         usercache.NewTheme(engine, opts...),
		Language:      usercache.NewLanguage(engine, opts...),
		SearchHistory: usercache.NewSearchHistory(engine, opts...),
		Favorites:     usercache.NewFavorites(engine, opts...),
	}
}

// Container owns the store and engine and hands out derived caches.
type Container struct {
	config Config
	store  cache.Store
	engine *cache.Engine
	caches Caches
}

// NewContainer opens the configured backend and builds the engine and the
// unscoped derived caches. Engine options such as cache.WithLogger are passed
// through.
func NewContainer(config Config, opts ...cache.Option) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := openStore(config)
	if err != nil {
		return nil, err
	}

	container, err := newContainer(config, store, opts)
	if err != nil {
		_ = closeStore(store)
		return nil, err
	}
	return container, nil
}

// NewContainerWithDefaults creates an in-memory container.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(DefaultConfig())
}

// NewContainerWithStore builds a container over an existing store. The
// backend settings in config are ignored.
func NewContainerWithStore(store cache.Store, engineConfig cache.Config, opts ...cache.Option) (*Container, error) {
	config := DefaultConfig()
	config.Engine = engineConfig
	config.Backend = ""
	return newContainer(config, store, opts)
}

func newContainer(config Config, store cache.Store, opts []cache.Option) (*Container, error) {
	engine, err := cache.New(store, config.Engine, opts...)
	if err != nil {
		return nil, err
	}

	return &Container{
		config: config,
		store:  store,
		engine: engine,
		caches: NewCaches(engine),
	}, nil
}

func openStore(config Config) (cache.Store, error) {
	switch config.Backend {
	case BackendSQLite:
		return cache.NewSQLiteStore(config.SQLite)
	case BackendBadger:
		return cache.NewBadgerStore(config.Badger)
	default:
		return cache.NewMemoryStore(config.Memory)
	}
}

func closeStore(store cache.Store) error {
	if closer, ok := store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config {
	return c.config
}

// Store returns the underlying store.
func (c *Container) Store() cache.Store {
	return c.store
}

// Engine returns the singleton engine.
func (c *Container) Engine() *cache.Engine {
	return c.engine
}

// Caches returns the unscoped derived caches.
func (c *Container) Caches() Caches {
	return c.caches
}

// ForUser returns derived caches whose keys are scoped to scope, sharing the
// container's engine.
func (c *Container) ForUser(scope ...any) Caches {
	return NewCaches(c.engine, usercache.WithScope(scope...))
}

// Close releases the store when it holds external resources.
func (c *Container) Close() error {
	return closeStore(c.store)
}
