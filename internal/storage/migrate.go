package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const versionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`

// MigrateUp applies every up migration not yet recorded in the state file.
// Reopening an already migrated file is a no-op.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(versionTable); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	applied, err := AppliedMigrations(db)
	if err != nil {
		return err
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	names, err := migrationNames(".up.sql")
	if err != nil {
		return err
	}
	for _, name := range names {
		version := migrationVersion(name, ".up.sql")
		if done[version] {
			continue
		}
		if err := runMigration(db, name, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown reverts the recorded migrations newest first.
func MigrateDown(db *sql.DB) error {
	if _, err := db.Exec(versionTable); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	applied, err := AppliedMigrations(db)
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(applied)))
	for _, version := range applied {
		name := "migrations/" + version + ".down.sql"
		if err := runMigration(db, name, `DELETE FROM schema_migrations WHERE version = ?`, version); err != nil {
			return err
		}
	}
	return nil
}

// AppliedMigrations lists the recorded versions in ascending order.
func AppliedMigrations(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func migrationNames(suffix string) ([]string, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(entries)
	return entries, nil
}

func migrationVersion(name, suffix string) string {
	return strings.TrimSuffix(path.Base(name), suffix)
}

// runMigration executes one file and its bookkeeping statement in a single
// transaction.
func runMigration(db *sql.DB, name, record, version string) error {
	sqlBytes, err := migrationFiles.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	if _, err := tx.Exec(string(sqlBytes)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	if _, err := tx.Exec(record, version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}
