package testutil

import (
	"jasypt-go/internal/resource"
)

// NewTestLoader creates a new in-memory resource loader for testing.
func NewTestLoader() *resource.MemoryLoader {
	return resource.NewMemoryLoader()
}
