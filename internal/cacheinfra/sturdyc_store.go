package cacheinfra

import (
	"sort"
	"strings"

	"github.com/viccon/sturdyc"
)

// SturdycStore is a process-local store backed by a sturdyc client.
type SturdycStore struct {
	client *sturdyc.Client[string]
}

// NewSturdycStore validates the configuration and creates the sturdyc client.
func NewSturdycStore(cfg SturdycConfig) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[string](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycStore{client: client}, nil
}

// Get returns the value stored under key.
func (s *SturdycStore) Get(key string) (string, bool, error) {
	v, ok := s.client.Get(key)
	return v, ok, nil
}

// Set stores value under key.
func (s *SturdycStore) Set(key, value string) error {
	s.client.Set(key, value)
	return nil
}

// Remove deletes key.
func (s *SturdycStore) Remove(key string) error {
	s.client.Delete(key)
	return nil
}

// Keys returns every key currently held by the client.
func (s *SturdycStore) Keys() ([]string, error) {
	keys := s.client.ScanKeys()
	sort.Strings(keys)
	return keys, nil
}

// KeysWithPrefix returns the keys starting with prefix.
func (s *SturdycStore) KeysWithPrefix(prefix string) ([]string, error) {
	var keys []string
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
