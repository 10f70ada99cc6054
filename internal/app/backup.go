package app

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"netinv/internal/config"
	"netinv/internal/encryption"
	"netinv/internal/inventory"
	"netinv/internal/objectstore"
)

// backupKey returns the object key of a host's database backup.
func backupKey(hostID string, encrypted bool) string {
	key := path.Join("backups", hostID, "inventory.db")
	if encrypted {
		key += ".age"
	}
	return key
}

// uploadSnapshot stores the snapshot file under key, encrypted when enc is
// set, and records version next to it.
func uploadSnapshot(ctx context.Context, objects inventory.ObjectStore, enc inventory.Encryptor, snapshot, key string, version int64) error {
	src := snapshot
	if enc != nil {
		src = snapshot + ".age"
		if err := encryptFile(enc, snapshot, src); err != nil {
			return err
		}
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening db backup for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat db backup: %w", err)
	}
	if err := objects.Put(ctx, key, f, info.Size(), "application/octet-stream"); err != nil {
		return fmt.Errorf("uploading db backup: %w", err)
	}
	if err := objects.PutVersion(ctx, key, version); err != nil {
		return fmt.Errorf("recording backup version: %w", err)
	}
	return nil
}

func encryptFile(enc inventory.Encryptor, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening db backup: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating encrypted backup: %w", err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting db backup: %w", err)
	}
	return out.Close()
}

// PullBackup downloads the host's database backup to dest and returns its
// version. An encrypted backup is decrypted with passphrase. An empty dest
// means the configured SQLite database file. An existing file is only
// replaced when force is set.
func PullBackup(ctx context.Context, cfg *config.Config, dest, passphrase string, force bool) (int64, error) {
	if dest == "" {
		if cfg.Database.Type != "sqlite" {
			return 0, fmt.Errorf("backup pull needs a destination for database type %q", cfg.Database.Type)
		}
		dest = filepath.Join(cfg.Database.DataDir, cfg.HostID+".db")
	}
	if _, err := os.Stat(dest); err == nil && !force {
		return 0, fmt.Errorf("%s already exists: use --force to replace it", dest)
	}

	objects, err := objectstore.NewObjectStoreFromConfig(ctx, cfg.Storage)
	if err != nil {
		return 0, fmt.Errorf("creating object store: %w", err)
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}

	var dec inventory.DecryptionContext
	if enc != nil {
		if dec, err = enc.Unlock(passphrase); err != nil {
			return 0, fmt.Errorf("unlocking backup key: %w", err)
		}
	}

	key := backupKey(cfg.HostID, enc != nil)
	version, err := objects.GetVersion(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("reading backup version: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("creating database directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".netinv-pull-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := download(ctx, objects, dec, key, tmp); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("writing backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("replacing %s: %w", dest, err)
	}
	return version, nil
}

func download(ctx context.Context, objects inventory.ObjectStore, dec inventory.DecryptionContext, key string, w *os.File) error {
	if dec == nil {
		if err := objects.Get(ctx, key, w); err != nil {
			return fmt.Errorf("downloading backup %s: %w", key, err)
		}
		return nil
	}

	enc, err := os.CreateTemp("", "netinv-pull-*.age")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		enc.Close()
		os.Remove(enc.Name())
	}()

	if err := objects.Get(ctx, key, enc); err != nil {
		return fmt.Errorf("downloading backup %s: %w", key, err)
	}
	if _, err := enc.Seek(0, 0); err != nil {
		return fmt.Errorf("rewinding backup: %w", err)
	}
	if err := dec.Decrypt(enc, w); err != nil {
		return fmt.Errorf("decrypting backup: %w", err)
	}
	return nil
}
