// Command generate_schema dumps the SQLite schema produced by the migrations
// and checks it against the field mapping tables.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"netinv/internal/database"
	"netinv/internal/database/migrations"
	"netinv/internal/model"
)

const header = `-- Generated from internal/database/migrations/files/sqlite/*.sql.
-- Run 'go generate ./internal/database' after changing a migration.

`

func main() {
	if err := run(filepath.Join("internal", "database", "migrations", "schema.sql")); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}
}

func run(outPath string) error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.MigrateUp(db, migrations.SQLite); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	for _, k := range append([]model.Kind{model.KindSite}, model.DependentKinds...) {
		if err := checkColumns(db, k); err != nil {
			return err
		}
	}

	schema, err := dumpSchema(db)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(header+schema), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Printf("Generated %s\n", outPath)
	return nil
}

// checkColumns fails when the table of k and its mapping table disagree.
func checkColumns(db *sql.DB, k model.Kind) error {
	rows, err := db.Query(fmt.Sprintf("SELECT name FROM pragma_table_info('%s')", k.Table()))
	if err != nil {
		return fmt.Errorf("reading columns of %s: %w", k.Table(), err)
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		got = append(got, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	want := model.FieldsFor(k).Columns()
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		return fmt.Errorf("table %s has columns %v, mapping table has %v", k.Table(), got, want)
	}
	return nil
}

// dumpSchema returns the CREATE statements of the application tables and
// their indexes, tables first.
func dumpSchema(db *sql.DB) (string, error) {
	rows, err := db.Query(`
		SELECT sql
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY type DESC, name`)
	if err != nil {
		return "", fmt.Errorf("reading schema: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", err
		}
		b.WriteString(stmt)
		b.WriteString(";\n\n")
	}
	return b.String(), rows.Err()
}
