package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

// testDB creates a temporary database for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDB(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "tabask.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not found: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if count != len(migrations) {
		t.Errorf("expected %d migrations recorded, got %d", len(migrations), count)
	}

	_, err = db.Exec(`INSERT INTO queries (source, tab_count, query, target_index) VALUES ('live', 3, 'find docs', 1)`)
	if err != nil {
		t.Fatalf("insert into queries: %v", err)
	}
}

func TestOpenDB_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tabask.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	db.Exec(`INSERT INTO queries (source, tab_count, query) VALUES ('live', 1, 'q')`)
	db.Close()

	// Migrations must not run twice.
	db2, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	var n int
	db2.QueryRow("SELECT COUNT(*) FROM queries").Scan(&n)
	if n != 1 {
		t.Errorf("expected 1 row after reopen, got %d", n)
	}
}
