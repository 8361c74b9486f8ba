package cacheinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// sqlEntry is one physical key/value row.
type sqlEntry struct {
	bun.BaseModel `bun:"table:kv_entries"`

	Key   string `bun:"cache_key,pk"`
	Value []byte `bun:"cache_value,notnull"`
}

// SQLStore persists entries in a single SQLite table through bun.
type SQLStore struct {
	db      *bun.DB
	timeout time.Duration
}

// NewSQLStore opens the database described by cfg and ensures the table exists.
func NewSQLStore(cfg SQLConfig) (*SQLStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite serializes writers anyway; one connection keeps :memory: databases coherent
	sqldb.SetMaxOpenConns(1)

	store, err := NewSQLStoreFromDB(bun.NewDB(sqldb, sqlitedialect.New()), cfg.Timeout)
	if err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStoreFromDB wraps an existing bun database and ensures the table exists.
func NewSQLStoreFromDB(db *bun.DB, timeout time.Duration) (*SQLStore, error) {
	if timeout <= 0 {
		timeout = DefaultSQLConfig().Timeout
	}
	s := &SQLStore{db: db, timeout: timeout}

	ctx, cancel := s.context()
	defer cancel()

	if _, err := db.NewCreateTable().Model((*sqlEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create kv_entries table: %w", err)
	}
	return s, nil
}

func (s *SQLStore) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Get returns the value stored under key.
func (s *SQLStore) Get(key string) (string, bool, error) {
	ctx, cancel := s.context()
	defer cancel()

	var row sqlEntry
	err := s.db.NewSelect().Model(&row).Where("cache_key = ?", key).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(row.Value), true, nil
}

// Set upserts value under key.
func (s *SQLStore) Set(key, value string) error {
	ctx, cancel := s.context()
	defer cancel()

	row := &sqlEntry{Key: key, Value: []byte(value)}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (cache_key) DO UPDATE").
		Set("cache_value = EXCLUDED.cache_value").
		Exec(ctx)
	return err
}

// Remove deletes key.
func (s *SQLStore) Remove(key string) error {
	ctx, cancel := s.context()
	defer cancel()

	_, err := s.db.NewDelete().Model((*sqlEntry)(nil)).Where("cache_key = ?", key).Exec(ctx)
	return err
}

// Keys returns every key in the table.
func (s *SQLStore) Keys() ([]string, error) {
	ctx, cancel := s.context()
	defer cancel()

	var keys []string
	err := s.db.NewSelect().Model((*sqlEntry)(nil)).Column("cache_key").Order("cache_key").Scan(ctx, &keys)
	return keys, err
}

// KeysWithPrefix returns the keys starting with prefix. substr is used rather
// than LIKE because LIKE is case-insensitive in sqlite.
func (s *SQLStore) KeysWithPrefix(prefix string) ([]string, error) {
	ctx, cancel := s.context()
	defer cancel()

	var keys []string
	err := s.db.NewSelect().
		Model((*sqlEntry)(nil)).
		Column("cache_key").
		Where("substr(cache_key, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix).
		Order("cache_key").
		Scan(ctx, &keys)
	return keys, err
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
