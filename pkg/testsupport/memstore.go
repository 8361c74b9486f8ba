package testsupport

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrInjected is the default error returned by MemStore when a failure is armed.
var ErrInjected = errors.New("testsupport: injected store failure")

// MemStore is a map-backed store for tests. Failures can be armed per
// operation and every call is recorded so tests can assert on store traffic.
type MemStore struct {
	mu    sync.Mutex
	data  map[string]string
	calls []string

	failGet    error
	failSet    error
	failRemove error
	failKeys   error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

func (m *MemStore) record(call string) {
	m.calls = append(m.calls, call)
}

// Get returns the raw value stored under key.
func (m *MemStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Get:" + key)
	if m.failGet != nil {
		return "", false, m.failGet
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Set:" + key)
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (m *MemStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Remove:" + key)
	if m.failRemove != nil {
		return m.failRemove
	}
	delete(m.data, key)
	return nil
}

// Keys returns every physical key in sorted order.
func (m *MemStore) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Keys")
	if m.failKeys != nil {
		return nil, m.failKeys
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Raw returns the stored value without recording a call.
func (m *MemStore) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Put writes a raw value without recording a call, e.g. to plant corrupt data.
func (m *MemStore) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Len returns the number of stored keys.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// FailGet arms (or with nil, disarms) failures for Get.
func (m *MemStore) FailGet(err error) { m.mu.Lock(); m.failGet = err; m.mu.Unlock() }

// FailSet arms (or with nil, disarms) failures for Set.
func (m *MemStore) FailSet(err error) { m.mu.Lock(); m.failSet = err; m.mu.Unlock() }

// FailRemove arms (or with nil, disarms) failures for Remove.
func (m *MemStore) FailRemove(err error) { m.mu.Lock(); m.failRemove = err; m.mu.Unlock() }

// FailKeys arms (or with nil, disarms) failures for Keys.
func (m *MemStore) FailKeys(err error) { m.mu.Lock(); m.failKeys = err; m.mu.Unlock() }

// Calls returns a copy of the recorded calls.
func (m *MemStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CountCalls returns how many recorded calls start with prefix.
func (m *MemStore) CountCalls(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// ResetCalls clears the recorded calls.
func (m *MemStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
