package storage

import (
	"context"
	"sync"
)

// Memory is an in-process KV. Failures can be injected for tests.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string

	// Error injection
	GetErr    error
	SetErr    error
	RemoveErr error
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements KV.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements KV.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Remove implements KV.
func (m *Memory) Remove(ctx context.Context, keys ...string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
