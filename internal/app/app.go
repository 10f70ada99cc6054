package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"netinv/internal/cache"
	"netinv/internal/config"
	"netinv/internal/database"
	"netinv/internal/encryption"
	"netinv/internal/inventory"
	"netinv/internal/objectstore"
)

// App is the application layer between the CLI and the inventory Service.
// It constructs all dependencies from config, records the audited operation
// of mutating commands, and uploads a database backup on Close.
type App struct {
	cfg       *config.Config
	store     *database.SQLStore
	objects   inventory.ObjectStore
	encryptor inventory.Encryptor
	listings  *cache.Listings
	service   *inventory.Service
	logger    *slog.Logger
	clock     inventory.Clock
	op        *Operation
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "SiteAdd", "Serve").
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	ttl, err := cfg.Inventory.TTL()
	if err != nil {
		return nil, err
	}
	mode, err := inventory.ParseCascadeMode(cfg.Inventory.CascadeMode)
	if err != nil {
		return nil, err
	}

	objects, err := objectstore.NewObjectStoreFromConfig(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating object store: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	store, err := database.NewStoreFromConfig(ctx, cfg.Database, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	if cfg.Backup.Enabled {
		if err := checkBackupVersion(ctx, store, objects, backupKey(cfg.HostID, enc != nil)); err != nil {
			store.Close()
			return nil, err
		}
	}

	clock := inventory.RealClock{}
	opID := clock.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, slog.LevelInfo)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	listings := cache.NewListings(ttl, clock)
	svc := inventory.NewService(store, objects, listings, &slogAdapter{l: logger}, clock, inventory.UUIDGenerator{}, mode)

	return &App{
		cfg:       cfg,
		store:     store,
		objects:   objects,
		encryptor: enc,
		listings:  listings,
		service:   svc,
		logger:    logger,
		clock:     clock,
		op:        NewOperation(operation, ""),
		logFile:   logFile,
	}, nil
}

// checkBackupVersion refuses to open a database that is older than the
// stored backup. A missing backup has version 0.
func checkBackupVersion(ctx context.Context, store *database.SQLStore, objects inventory.ObjectStore, key string) error {
	remote, err := objects.GetVersion(ctx, key)
	if err != nil {
		return fmt.Errorf("checking backup version: %w", err)
	}
	local, err := store.MaxOperationID(ctx)
	if err != nil {
		return fmt.Errorf("checking local database version: %w", err)
	}
	if remote > local {
		return fmt.Errorf("local database is behind the stored backup (local=%d, remote=%d): run `netinv backup pull` or re-initialize", local, remote)
	}
	return nil
}

func (a *App) Service() *inventory.Service { return a.service }

func (a *App) Logger() *slog.Logger { return a.logger }

func (a *App) Config() *config.Config { return a.cfg }

// Store exposes the database for the audit middleware of the HTTP server.
func (a *App) Store() inventory.OperationLog { return a.store }

// Listings returns the listing cache, for its hit/miss counters.
func (a *App) Listings() *cache.Listings { return a.listings }

// UserID returns the acting user of CLI commands.
func (a *App) UserID() string { return a.cfg.UserID }

// Mutate runs fn as the audited operation of the session. The operation is
// persisted before fn runs and finished with fn's outcome on Close.
func (a *App) Mutate(ctx context.Context, params string, fn func(ctx context.Context) error) error {
	if err := a.persistOperation(ctx, params); err != nil {
		return err
	}
	err := fn(ctx)
	a.op.Finish(err)
	return err
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for DB-mutating commands.
func (a *App) persistOperation(ctx context.Context, params string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = params
	op, err := a.store.CreateOperation(ctx, inventory.Operation{
		Operation:  a.op.Operation,
		Parameters: params,
		UserID:     a.cfg.UserID,
		StartedAt:  a.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = op.ID
	return nil
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record and, when backups
// are enabled, snapshots the database and uploads it to the object store.
// For non-persisted operations: just closes the database.
func (a *App) Close() error {
	ctx := context.Background()
	var errs []error

	if a.op.Persisted() {
		if err := a.store.FinishOperation(ctx, a.op.ID, a.op.Status, a.clock.Now().UTC()); err != nil {
			errs = append(errs, fmt.Errorf("finishing operation: %w", err))
		}
		if a.cfg.Backup.Enabled {
			// Requests served by `netinv serve` record operations after the
			// session's own.
			version := a.op.ID
			if latest, err := a.store.MaxOperationID(ctx); err == nil && latest > version {
				version = latest
			}
			if err := a.backup(ctx, version); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing database: %w", err))
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return errors.Join(errs...)
}

// backup snapshots the database to a temp file and uploads it with the
// given version.
func (a *App) backup(ctx context.Context, version int64) error {
	if a.store.Dialect() != "sqlite" {
		a.logger.Warn("skipping backup", "reason", "database snapshots need sqlite", "dialect", a.store.Dialect())
		return nil
	}

	tmpDir, err := os.MkdirTemp("", "netinv-backup-*")
	if err != nil {
		return fmt.Errorf("creating temp dir for db backup: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "inventory.db")
	if err := a.store.BackupTo(ctx, snapshot); err != nil {
		return err
	}

	start := a.clock.Now()
	key := backupKey(a.cfg.HostID, a.encryptor != nil)
	if err := uploadSnapshot(ctx, a.objects, a.encryptor, snapshot, key, version); err != nil {
		return err
	}
	a.logger.Info("database backed up", "key", key, "version", version, "elapsed", a.clock.Now().Sub(start))
	return nil
}
