package cache

// Store is the persistent key-value store the engine writes through.
// Implementations report failures as errors; the engine converts them into
// its degrade path and never surfaces them to callers.
type Store interface {
	// Get returns the value under key and whether it exists.
	Get(key string) (string, bool, error)
	// Set writes value under key, replacing any previous value.
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
	// Keys enumerates every key in the store.
	Keys() ([]string, error)
}

// PrefixScanner is implemented by stores that can enumerate keys under a
// prefix natively. The engine prefers it over filtering Keys.
type PrefixScanner interface {
	KeysWithPrefix(prefix string) ([]string, error)
}
