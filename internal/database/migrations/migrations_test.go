package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db, SQLite); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	tables := []string{"sites", "equipment", "network_connections", "ip_ranges", "operations", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	err := CheckDBMigrationStatus(db, SQLite)
	if err == nil {
		t.Fatal("CheckDBMigrationStatus() expected error for fresh database, got nil")
	}

	if err.Error() != "database has no schema version (needs migration)" {
		t.Errorf("CheckDBMigrationStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db, SQLite); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	if err := CheckDBMigrationStatus(db, SQLite); err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}
}

func TestStatus_Err(t *testing.T) {
	tests := []struct {
		name    string
		st      Status
		wantErr bool
	}{
		{"current", Status{Version: 3, Latest: 3}, false},
		{"unversioned", Status{Latest: 3, Unversioned: true}, true},
		{"dirty", Status{Version: 3, Latest: 3, Dirty: true}, true},
		{"behind", Status{Version: 1, Latest: 3}, true},
		{"ahead", Status{Version: 4, Latest: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.st.Err(); (err != nil) != tt.wantErr {
				t.Errorf("Err() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db, SQLite); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}
	st, err := ReadStatus(db, SQLite)
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if st.Unversioned || st.Dirty || st.Version != st.Latest || st.Latest == 0 {
		t.Errorf("ReadStatus() = %+v, want clean at latest", st)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db, SQLite); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db, SQLite); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	if err := CheckDBMigrationStatus(db, SQLite); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestLatestVersion(t *testing.T) {
	sqliteVersion, err := LatestVersion(SQLite)
	if err != nil {
		t.Fatalf("LatestVersion(sqlite) error = %v", err)
	}
	pgVersion, err := LatestVersion(Postgres)
	if err != nil {
		t.Fatalf("LatestVersion(postgres) error = %v", err)
	}
	if sqliteVersion != pgVersion {
		t.Errorf("sqlite migrations at %d, postgres at %d; dialects must ship the same versions", sqliteVersion, pgVersion)
	}

	if _, err := LatestVersion("mysql"); err == nil {
		t.Error("LatestVersion(mysql) expected error, got nil")
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db, SQLite); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Equipment pointing at a missing site violates the site_id reference.
	_, err := db.Exec(`
		INSERT INTO equipment (id, name, type, model, manufacturer, status, site_id, created_at, updated_at)
		VALUES ('eq-1', 'core', 'router', 'm', 'acme', 'active', 'no-such-site', datetime('now'), datetime('now'))
	`)
	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}

	// A null site_id is allowed.
	_, err = db.Exec(`
		INSERT INTO equipment (id, name, type, model, manufacturer, status, created_at, updated_at)
		VALUES ('eq-2', 'spare', 'switch', 'm', 'acme', 'unknown', datetime('now'), datetime('now'))
	`)
	if err != nil {
		t.Errorf("insert with null site_id failed: %v", err)
	}
}

func TestSchema_SiteDeleteWithDependents(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db, SQLite); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	if _, err := db.Exec("INSERT INTO sites (id, name, created_at, updated_at) VALUES ('s1', 'HQ', datetime('now'), datetime('now'))"); err != nil {
		t.Fatalf("Failed to insert site: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO ip_ranges (id, site_id, "range", created_at, updated_at) VALUES ('r1', 's1', '10.0.0.0/24', datetime('now'), datetime('now'))`); err != nil {
		t.Fatalf("Failed to insert ip range: %v", err)
	}

	// References do not cascade: the parent cannot go first.
	if _, err := db.Exec("DELETE FROM sites WHERE id = 's1'"); err == nil {
		t.Error("Expected foreign key violation deleting a referenced site, but delete succeeded")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
