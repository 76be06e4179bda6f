// Shared fixtures for the sqlite package tests. Each test gets its own
// seeded database file under a temp directory.
package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

// newTestDB creates a database file seeded with the given statements
// and opens it through the session backend.
func newTestDB(t *testing.T, seedSQL ...string) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open seed database: %v", err)
	}
	// sql.Open is lazy; without at least one statement no file is
	// created, and Open below requires one on disk.
	if _, err := raw.Exec("PRAGMA user_version = 0"); err != nil {
		raw.Close()
		t.Fatalf("create database file: %v", err)
	}
	for _, stmt := range seedSQL {
		if _, err := raw.Exec(stmt); err != nil {
			raw.Close()
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
	if err := raw.Close(); err != nil {
		t.Fatalf("close seed database: %v", err)
	}

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedAlbums is the standard three-row fixture table.
const seedAlbums = `CREATE TABLE albums (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	year INTEGER,
	cover BLOB,
	rating REAL DEFAULT 0.0
)`

const seedAlbumRows = `INSERT INTO albums (id, title, year, cover, rating) VALUES
	(1, 'Blue', 1971, x'cafe', 4.5),
	(2, 'Horses', 1975, NULL, 5.0),
	(3, 'Low', 1977, NULL, 4.0)`

// albumCols mirrors the fixture table's metadata for composer tests
// that do not need a live database.
func albumCols() []types.ColumnMeta {
	return []types.ColumnMeta{
		{Name: "id", Affinity: types.AffinityInteger, PrimaryKey: true},
		{Name: "title", Affinity: types.AffinityText, NotNull: true},
		{Name: "year", Affinity: types.AffinityInteger},
		{Name: "cover", Affinity: types.AffinityBlob},
		{Name: "rating", Affinity: types.AffinityReal, HasDefault: true},
	}
}
