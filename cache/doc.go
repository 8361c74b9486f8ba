// Package cache provides a namespaced, TTL-aware cache over a persistent
// key-value store.
//
// # Overview
//
// The package exports:
//
//   - Engine: get/set/remove/has/clear/keys/size/cleanup over a Store
//   - Store: the minimal persistent key-value contract the Engine writes through
//   - Typed: a generic view binding one logical key to one value type
//   - NewMemoryStore, NewSQLiteStore, NewBadgerStore: ready-made Store backends
//
// # Basic Usage
//
//	store, err := cache.NewSQLiteStore(cache.DefaultSQLiteStoreConfig())
//	if err != nil {
//		return err
//	}
//	engine, err := cache.NewWithDefaults(store)
//	if err != nil {
//		return err
//	}
//
//	engine.Set("rates", rates, time.Hour)
//	rates, ok := cache.Get[Rates](engine, "rates")
//
// # Entries and Expiry
//
// Every value is stored inside an envelope holding the value, its creation
// time and an optional expiry, both in epoch milliseconds. With the default
// JSON codec the stored text is
//
//	{"value": ..., "timestamp": 1700000000000, "expiresAt": 1700086400000}
//
// An entry is expired once the current time is strictly past expiresAt.
// Expired entries are removed lazily when Get or Has touches them, or eagerly
// by Cleanup. Keys, Size and Stats never remove anything. There are no
// background timers.
//
// # Namespaces
//
// All logical keys are rewritten to Prefix+key before reaching the store.
// Keys and Clear only see keys under the engine's own prefix, so engines with
// different prefixes can share a single store.
//
// # Error Handling
//
// The cache is advisory state, so the Engine never returns errors from data
// operations. Store failures, values that cannot be encoded and corrupt
// entries degrade to false, zero or a miss, are logged at warn level and are
// available through LastError. Corrupt entries found by Get, Has or Cleanup
// are removed.
//
// The store is probed with a write and delete of a sentinel key before first
// use. A successful probe is trusted until an operation fails; a failed probe
// is retried on the next call.
//
// # Concurrency
//
// Engine methods may be called from several goroutines, but read-modify-write
// sequences built on top (Typed.Update, the usercache package) are not atomic
// with respect to other writers of the same key.
package cache
