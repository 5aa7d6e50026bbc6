package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateUpRecordsVersions(t *testing.T) {
	db := openDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	got, err := AppliedMigrations(db)
	if err != nil {
		t.Fatalf("applied: %v", err)
	}
	if len(got) != 1 || got[0] != "0001_client_state" {
		t.Fatalf("unexpected versions %v", got)
	}

	// A second run must not re-apply anything or fail.
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up: %v", err)
	}
	again, _ := AppliedMigrations(db)
	if len(again) != 1 {
		t.Fatalf("expected one version after rerun, got %v", again)
	}
}

func TestMigrateRoundTripKeepsStateUsable(t *testing.T) {
	db := openDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	if got, _ := AppliedMigrations(db); len(got) != 0 {
		t.Fatalf("expected no versions after down, got %v", got)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	if err := repo.Put(t.Context(), KeyUser, `{"id":"u-1"}`); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}
	got, err := repo.Get(t.Context(), KeyUser)
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if got != `{"id":"u-1"}` {
		t.Fatalf("unexpected value after roundtrip: %q", got)
	}
}
