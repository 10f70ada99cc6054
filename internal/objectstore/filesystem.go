package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"netinv/internal/inventory"
)

// FileSystemStore keeps objects as files below a root directory:
//
//	<root>/
//	  objects/
//	    sites/<siteID>/floorplan/<name>
//	    backups/<hostID>/inventory.db.age
//	  versions/
//	    <key>.version
type FileSystemStore struct {
	root        string
	objectsDir  string
	versionsDir string
}

// NewFileSystemStore creates a store rooted at root, creating the directory
// structure if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving object store root: %w", err)
	}
	objectsDir := filepath.Join(abs, "objects")
	versionsDir := filepath.Join(abs, "versions")

	if err := os.MkdirAll(objectsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}
	if err := os.MkdirAll(versionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create versions directory: %w", err)
	}

	return &FileSystemStore{
		root:        abs,
		objectsDir:  objectsDir,
		versionsDir: versionsDir,
	}, nil
}

func (s *FileSystemStore) objectPath(key string) string {
	return filepath.Join(s.objectsDir, filepath.FromSlash(key))
}

// Put writes the object atomically. The content type is not persisted.
func (s *FileSystemStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return writeFile(s.objectPath(key), r, size)
}

func (s *FileSystemStore) Get(ctx context.Context, key string, w io.Writer) error {
	if err := checkKey(key); err != nil {
		return err
	}
	f, err := os.Open(s.objectPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("object %s: %w", key, inventory.ErrNotFound)
		}
		return fmt.Errorf("failed to open object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	return nil
}

// Delete removes the object and its version marker. Empty parent
// directories are left in place.
func (s *FileSystemStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.objectPath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("object %s: %w", key, inventory.ErrNotFound)
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	if err := os.Remove(s.versionPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete version file: %w", err)
	}
	return nil
}

// URL returns a file:// URL of the object path.
func (s *FileSystemStore) URL(key string) string {
	return "file://" + filepath.ToSlash(s.objectPath(key))
}

func (s *FileSystemStore) Key(url string) (string, bool) {
	return trimScheme(url, "file://"+filepath.ToSlash(s.objectsDir)+"/")
}

func (s *FileSystemStore) versionPath(key string) string {
	return filepath.Join(s.versionsDir, filepath.FromSlash(key)+".version")
}

func (s *FileSystemStore) PutVersion(ctx context.Context, key string, version int64) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data := strconv.FormatInt(version, 10)
	return writeFile(s.versionPath(key), strings.NewReader(data), int64(len(data)))
}

// GetVersion returns 0 if no version file exists.
func (s *FileSystemStore) GetVersion(ctx context.Context, key string) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(s.versionPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup verifies that the store directories exist.
func (s *FileSystemStore) ValidateSetup(ctx context.Context) error {
	for _, dir := range []string{s.root, s.objectsDir, s.versionsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("object store directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("object store path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFile writes r to destPath through a temp file and rename.
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

var _ inventory.ObjectStore = (*FileSystemStore)(nil)
