package storage

import "sync"

// Memory is a map-backed Backend. It is the storage area for native builds
// and tests, and the fallback when chrome.storage is absent in a context.
// Thread-safe for concurrent callbacks.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

// Seed bulk-loads key/value pairs, replacing existing values.
// Returns the number of pairs loaded.
func (m *Memory) Seed(items map[string][]byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range items {
		cp := make([]byte, len(v))
		copy(cp, v)
		m.items[k] = cp
	}
	return len(items)
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

// Set stores value under key.
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	m.items[key] = cp
	return nil
}

// Remove deletes the given keys.
func (m *Memory) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

// Clear removes every key.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string][]byte)
	return nil
}

// BytesInUse reports the summed size of keys and values.
func (m *Memory) BytesInUse() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for k, v := range m.items {
		n += int64(len(k) + len(v))
	}
	return n, nil
}

// Count returns the number of stored keys.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}
