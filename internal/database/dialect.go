package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mattn/go-sqlite3"

	"netinv/internal/database/migrations"
	"netinv/internal/inventory"
)

// dialect hides the differences between the supported SQL engines.
type dialect interface {
	name() string
	// rebind rewrites ? placeholders into the engine's syntax.
	rebind(query string) string
	// listArg encodes a string list column value. Empty lists are NULL.
	listArg(l []string) (any, error)
	// listScanner decodes a string list column into dst.
	listScanner(dst *[]string) sql.Scanner
	// isConstraint reports whether err is an integrity constraint failure.
	isConstraint(err error) bool
	// lockSuffix is appended to a single-row select inside a transaction so
	// the row stays locked until commit.
	lockSuffix() string
}

type sqliteDialect struct{}

func (sqliteDialect) name() string { return migrations.SQLite }

func (sqliteDialect) rebind(query string) string { return query }

// SQLite has no array type; lists are stored as JSON text.
func (sqliteDialect) listArg(l []string) (any, error) {
	if len(l) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

func (sqliteDialect) listScanner(dst *[]string) sql.Scanner { return &jsonList{dst: dst} }

// Write transactions begin IMMEDIATE and hold the database lock already.
func (sqliteDialect) lockSuffix() string { return "" }

func (sqliteDialect) isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

type jsonList struct {
	dst *[]string
}

func (j *jsonList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*j.dst = nil
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("cannot scan %T into a list", src)
	}
	if len(b) == 0 {
		*j.dst = nil
		return nil
	}
	return json.Unmarshal(b, j.dst)
}

type postgresDialect struct {
	types *pgtype.Map
}

func newPostgresDialect() postgresDialect {
	return postgresDialect{types: pgtype.NewMap()}
}

func (postgresDialect) name() string { return migrations.Postgres }

func (postgresDialect) rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (postgresDialect) listArg(l []string) (any, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return l, nil
}

func (d postgresDialect) listScanner(dst *[]string) sql.Scanner { return d.types.SQLScanner(dst) }

func (postgresDialect) lockSuffix() string { return " FOR UPDATE" }

// Class 23 covers integrity constraint violations.
func (postgresDialect) isConstraint(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && strings.HasPrefix(pe.Code, "23")
}

// classify maps a driver error onto the inventory error taxonomy.
func classify(d dialect, action string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", action, inventory.ErrNotFound)
	case d.isConstraint(err):
		return fmt.Errorf("%s: %w: %w", action, inventory.ErrConstraintViolation, err)
	}
	return fmt.Errorf("%s: %w: %w", action, inventory.ErrService, err)
}
