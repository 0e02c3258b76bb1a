// Package store provides a JSON-backed key-value store. It backs per-photo
// viewport persistence and the recent-project list.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store persists string keys to opaque JSON values.
type Store struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
	path   string
}

// Open reads the store at path. A missing file yields an empty store bound
// to that path; a present but unreadable one is an error.
func Open(path string) (*Store, error) {
	s := &Store{
		values: make(map[string]json.RawMessage),
		path:   path,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", path, err)
	}
	return s, nil
}

// Save writes the store to disk, creating parent directories as needed.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Get returns the raw value stored under key.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// Set stores value under key. The value must be valid JSON.
func (s *Store) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("store value for %q is not valid JSON", key)
	}
	s.mu.Lock()
	s.values[key] = append(json.RawMessage(nil), value...)
	s.mu.Unlock()
	return nil
}

// SetObject marshals v and stores it under key.
func (s *Store) SetObject(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, data)
}

// GetObject unmarshals the value under key into out. Returns false when the
// key is absent or the stored value does not fit out.
func (s *Store) GetObject(key string, out interface{}) bool {
	data, ok := s.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// Delete removes a key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Keys returns all stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
