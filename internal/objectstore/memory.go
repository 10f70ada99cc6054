// Package objectstore implements inventory.ObjectStore on memory, a local
// directory and S3.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"netinv/internal/inventory"
)

const memoryScheme = "mem://"

// MemoryStore keeps objects in memory. It is safe for concurrent use.
type MemoryStore struct {
	objects  map[string][]byte
	types    map[string]string
	versions map[string]int64
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string][]byte),
		types:    make(map[string]string),
		versions: make(map[string]int64),
	}
}

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, key string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return fmt.Errorf("object %s: %w", key, inventory.ErrNotFound)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("object %s: %w", key, inventory.ErrNotFound)
	}
	delete(m.objects, key)
	delete(m.types, key)
	delete(m.versions, key)
	return nil
}

func (m *MemoryStore) URL(key string) string {
	return memoryScheme + key
}

func (m *MemoryStore) Key(url string) (string, bool) {
	return trimScheme(url, memoryScheme)
}

func (m *MemoryStore) PutVersion(ctx context.Context, key string, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[key] = version
	return nil
}

// GetVersion returns 0 if no version has been stored for key.
func (m *MemoryStore) GetVersion(ctx context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[key], nil
}

// ContentType returns the content type recorded by Put.
func (m *MemoryStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[key]
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup(ctx context.Context) error {
	return nil
}

// checkKey rejects keys that would escape the store root.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("%w: invalid object key %q", inventory.ErrConstraintViolation, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: invalid object key %q", inventory.ErrConstraintViolation, key)
		}
	}
	return nil
}

func trimScheme(url, prefix string) (string, bool) {
	key, ok := strings.CutPrefix(url, prefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

var _ inventory.ObjectStore = (*MemoryStore)(nil)
