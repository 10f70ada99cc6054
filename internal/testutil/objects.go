package testutil

import "netinv/internal/objectstore"

// NewTestObjectStore creates a new in-memory object store for testing.
func NewTestObjectStore() *objectstore.MemoryStore {
	return objectstore.NewMemoryStore()
}
