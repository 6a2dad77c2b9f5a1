package db

import (
	"path/filepath"
	"testing"
)

func TestOpenFileAndEnsureSchemaTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omara.sqlite3")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	for range 2 {
		if err := EnsureSchema(database); err != nil {
			t.Fatalf("EnsureSchema: %v", err)
		}
	}

	var mode string
	if err := database.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal mode, got %q", mode)
	}

	for _, table := range []string{"users", "settings", "revoked_tokens"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestActiveUsernameUnique(t *testing.T) {
	database := NewTestDB(t)

	if _, err := database.Exec(`INSERT INTO users (username, password_hash, deleted_at) VALUES ('a', 'x', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatal(err)
	}
	// A deleted account frees its name.
	if _, err := database.Exec(`INSERT INTO users (username, password_hash) VALUES ('a', 'y')`); err != nil {
		t.Fatalf("reusing a deleted username: %v", err)
	}
	if _, err := database.Exec(`INSERT INTO users (username, password_hash) VALUES ('a', 'z')`); err == nil {
		t.Error("expected duplicate active username to fail")
	}
}
