package objectstore

import (
	"context"
	"fmt"
	"os"

	"netinv/internal/config"
	"netinv/internal/inventory"
)

// NewObjectStoreFromConfig creates an ObjectStore based on the storage config
// type. S3 credentials are read from NETINV_S3_ACCESS_KEY_ID and
// NETINV_S3_SECRET_ACCESS_KEY when present.
func NewObjectStoreFromConfig(ctx context.Context, cfg config.StorageConfig) (inventory.ObjectStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem object store requires fs_root to be set")
		}
		s, err := NewFileSystemStore(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3Store(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     os.Getenv("NETINV_S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("NETINV_S3_SECRET_ACCESS_KEY"),
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
