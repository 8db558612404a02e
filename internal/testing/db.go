// Package testing provides database helpers for package tests.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver for in-memory test databases

	"github.com/aristath/prefill/internal/database"
)

// NewTestDB creates a file-backed database with the production driver, profile and
// migrated schema. The database is closed when the test finishes.
//
// Supported schema names:
//   - "prefill" - clients, instruments, orders, rule_config
//   - "audit" - prefill_audit
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	profile := database.ProfileStandard
	if name == "audit" {
		profile = database.ProfileLedger
	}
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})
	return db
}

// NewMemoryDB opens an in-memory mattn/go-sqlite3 connection with the named schema
// applied. The pool is pinned to one connection so every query sees the same memory
// database.
func NewMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()

	schema, err := database.Schema(name)
	if err != nil {
		t.Fatalf("Failed to load schema %s: %v", name, err)
	}
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		t.Fatalf("Failed to apply schema %s: %v", name, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
