package inventory

import (
	"context"
	"io"
)

// ObjectStore holds binary objects: site floor plans, rack photos and
// database backups. Keys are slash-separated paths.
type ObjectStore interface {
	// Put stores size bytes read from r under key, replacing any previous
	// object.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Get writes the object to w. ErrNotFound when the key is absent.
	Get(ctx context.Context, key string, w io.Writer) error

	// Delete removes the object. ErrNotFound when the key is absent.
	Delete(ctx context.Context, key string) error

	// URL returns the public reference stored on records for key.
	URL(key string) string

	// Key resolves a URL produced by this store back to its key.
	Key(url string) (string, bool)

	// PutVersion records a version number alongside key.
	PutVersion(ctx context.Context, key string, version int64) error

	// GetVersion returns the version recorded for key, or 0 if none.
	GetVersion(ctx context.Context, key string) (int64, error)

	// ValidateSetup verifies that the store is reachable and writable.
	ValidateSetup(ctx context.Context) error
}
