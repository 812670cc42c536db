package resource

import (
	"context"
	"fmt"
	"sync"

	"jasypt-go/internal/jasypt"
)

// MemoryLoader is an in-memory implementation of jasypt.ResourceLoader keyed
// by the full location string. It is useful for testing.
// This implementation is safe for concurrent use.
type MemoryLoader struct {
	resources map[string][]byte
	mu        sync.RWMutex
}

var _ jasypt.ResourceLoader = (*MemoryLoader)(nil)

// NewMemoryLoader creates an empty MemoryLoader.
func NewMemoryLoader() *MemoryLoader {
	return &MemoryLoader{resources: make(map[string][]byte)}
}

// Put stores data under location, replacing any previous value.
func (m *MemoryLoader) Put(location string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[location] = append([]byte(nil), data...)
}

// Load returns a copy of the data stored under location.
func (m *MemoryLoader) Load(_ context.Context, location string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.resources[location]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	return append([]byte(nil), data...), nil
}
