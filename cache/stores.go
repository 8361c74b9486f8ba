package cache

import (
	"github.com/goliatone/go-kvcache/internal/cacheinfra"
)

// NewMemoryStore constructs an in-process store backed by sturdyc.
func NewMemoryStore(cfg MemoryStoreConfig) (Store, error) {
	s, err := cacheinfra.NewSturdycStore(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore opens a SQLite-backed store. The returned store implements
// io.Closer.
func NewSQLiteStore(cfg SQLiteStoreConfig) (Store, error) {
	s, err := cacheinfra.NewSQLStore(cacheinfra.SQLConfig{DSN: cfg.DSN, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewBadgerStore opens a Badger-backed store. The returned store implements
// io.Closer.
func NewBadgerStore(cfg BadgerStoreConfig) (Store, error) {
	s, err := cacheinfra.NewBadgerStore(cacheinfra.BadgerConfig{Dir: cfg.Dir, InMemory: cfg.InMemory})
	if err != nil {
		return nil, err
	}
	return s, nil
}
