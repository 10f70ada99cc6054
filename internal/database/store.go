package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"netinv/internal/database/migrations"
	"netinv/internal/inventory"
	"netinv/internal/model"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore implements inventory.Store on top of database/sql. A store
// returned by WithinTx is bound to that transaction.
type SQLStore struct {
	db      *sql.DB
	q       querier
	tx      *sql.Tx
	dialect dialect
	path    string
}

// NewSQLiteStore opens the SQLite database at path and migrates it to the
// latest schema. path can be a file path or ":memory:".
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db, migrations.SQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return newSQLStore(db, sqliteDialect{}, path), nil
}

// NewPostgresStore connects to PostgreSQL through the pgx driver and
// migrates the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := migrations.MigrateUp(db, migrations.Postgres); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return newSQLStore(db, newPostgresDialect(), ""), nil
}

// newSQLStore wraps an existing, migrated connection.
func newSQLStore(db *sql.DB, d dialect, path string) *SQLStore {
	return &SQLStore{db: db, q: db, dialect: d, path: path}
}

// OpenConnection opens and configures a SQLite database connection.
// Foreign keys are enabled through the DSN so every pooled connection
// enforces them. An in-memory database is limited to one connection, since
// each connection would otherwise see its own empty database.
func OpenConnection(path string) (*sql.DB, error) {
	params := "_foreign_keys=1&_busy_timeout=5000"
	memory := path == ":memory:"
	if !memory {
		params += "&_txlock=immediate"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", path+sep+params)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read foreign key setting: %w", err)
	}
	if fk != 1 {
		db.Close()
		return nil, errors.New("failed to enable foreign keys")
	}
	return db, nil
}

func (s *SQLStore) Sites() inventory.Repository[model.Site] {
	return &table[model.Site]{s: s, e: siteEntity}
}

func (s *SQLStore) Equipment() inventory.DependentRepository[model.Equipment] {
	return &table[model.Equipment]{s: s, e: equipmentEntity}
}

func (s *SQLStore) Connections() inventory.DependentRepository[model.NetworkConnection] {
	return &table[model.NetworkConnection]{s: s, e: connectionEntity}
}

func (s *SQLStore) IPRanges() inventory.DependentRepository[model.IPRange] {
	return &table[model.IPRange]{s: s, e: ipRangeEntity}
}

func (s *SQLStore) WithinTx(ctx context.Context, fn func(tx inventory.Store) error) error {
	return s.inTx(ctx, func(tx *SQLStore) error { return fn(tx) })
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *SQLStore) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(s.dialect, "starting transaction", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLStore{db: s.db, q: tx, tx: tx, dialect: s.dialect, path: s.path}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify(s.dialect, "committing transaction", err)
	}
	return nil
}

// Dialect returns "sqlite" or "postgres".
func (s *SQLStore) Dialect() string {
	return s.dialect.name()
}

// Path returns the database file path (or ":memory:" for in-memory databases).
// It is empty for PostgreSQL.
func (s *SQLStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db, s.dialect.name())
}

// ErrBackupUnsupported is returned by BackupTo for engines without a file
// snapshot.
var ErrBackupUnsupported = errors.New("database snapshots are only supported for sqlite")

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLStore) BackupTo(ctx context.Context, destPath string) error {
	if s.dialect.name() != migrations.SQLite {
		return ErrBackupUnsupported
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection. Closing a transactional store is a
// no-op.
func (s *SQLStore) Close() error {
	if s.tx != nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Compile-time check that SQLStore implements inventory.Store interface
var _ inventory.Store = (*SQLStore)(nil)
