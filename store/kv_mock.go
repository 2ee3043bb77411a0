package store

import (
	"context"
	"sync"
)

// MockKV is an in-memory KV for testing, with injectable failures
type MockKV struct {
	mu       sync.RWMutex
	data     map[string]string
	writes   int
	ReadErr  error // returned by Get when set
	WriteErr error // returned by Set when set
}

// NewMockKV creates an empty mock KV
func NewMockKV() *MockKV {
	return &MockKV{data: make(map[string]string)}
}

// Get returns the stored value, ReadErr, or ErrKeyNotFound
func (m *MockKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	val, ok := m.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

// Set stores value unless WriteErr is set
func (m *MockKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.data[key] = value
	m.writes++
	return nil
}

// Raw returns the stored value without failure injection (for testing assertions)
func (m *MockKV) Raw(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	return val, ok
}

// Put stores a value bypassing WriteErr (for test setup)
func (m *MockKV) Put(key, value string) {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
}

// Writes returns the number of successful Set calls
func (m *MockKV) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
