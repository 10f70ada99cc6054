package database

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"netinv/internal/inventory"
)

func TestPostgresRebind(t *testing.T) {
	got := newPostgresDialect().rebind("UPDATE sites SET name = ?, updated_at = ? WHERE id = ?")
	want := "UPDATE sites SET name = $1, updated_at = $2 WHERE id = $3"
	if got != want {
		t.Errorf("rebind() = %q, want %q", got, want)
	}
}

func TestLockSuffix(t *testing.T) {
	if got := newPostgresDialect().lockSuffix(); got != " FOR UPDATE" {
		t.Errorf("postgres lockSuffix() = %q, want FOR UPDATE", got)
	}
	if got := (sqliteDialect{}).lockSuffix(); got != "" {
		t.Errorf("sqlite lockSuffix() = %q, want empty", got)
	}
}

func TestSQLiteListColumn(t *testing.T) {
	d := sqliteDialect{}

	arg, err := d.listArg(nil)
	if err != nil || arg != nil {
		t.Errorf("listArg(nil) = %v, %v; want nil, nil", arg, err)
	}

	arg, err = d.listArg([]string{"a", "b"})
	if err != nil {
		t.Fatalf("listArg() error = %v", err)
	}

	var got []string
	if err := d.listScanner(&got).Scan(arg); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Scan() = %v, want [a b]", got)
	}

	if err := d.listScanner(&got).Scan(nil); err != nil || got != nil {
		t.Errorf("Scan(nil) = %v, %v; want nil list", got, err)
	}

	if err := d.listScanner(&got).Scan(42); err == nil {
		t.Error("Scan(42) expected error, got nil")
	}
}

func TestClassify(t *testing.T) {
	pg := newPostgresDialect()

	tests := []struct {
		name string
		d    dialect
		err  error
		want error
	}{
		{"no rows", sqliteDialect{}, sql.ErrNoRows, inventory.ErrNotFound},
		{"postgres foreign key", pg, &pgconn.PgError{Code: "23503"}, inventory.ErrConstraintViolation},
		{"postgres unique", pg, &pgconn.PgError{Code: "23505"}, inventory.ErrConstraintViolation},
		{"postgres connection", pg, &pgconn.PgError{Code: "08006"}, inventory.ErrService},
		{"other", sqliteDialect{}, errors.New("disk I/O error"), inventory.ErrService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.d, "doing x", fmt.Errorf("driver: %w", tt.err))
			if !errors.Is(got, tt.want) {
				t.Errorf("classify() = %v, want %v", got, tt.want)
			}
		})
	}
}
