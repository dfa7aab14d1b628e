package migrations

import (
	"testing"

	"tabsync/internal/database"
)

func TestMigrateUpCreatesSchema(t *testing.T) {
	db, err := database.Open("file::memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatal(err)
	}

	for _, table := range []string{
		"sync_markers", "events", "session_restorations",
		"sessions", "session_windows", "session_tabs",
	} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing after migration: %v", table, err)
		}
	}

	version, dirty, err := Version(db)
	if err != nil {
		t.Fatal(err)
	}
	if dirty {
		t.Fatal("database dirty after migration")
	}
	if version == 0 {
		t.Fatal("expected non-zero schema version")
	}
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db, err := database.Open("file::memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatal(err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}
}
