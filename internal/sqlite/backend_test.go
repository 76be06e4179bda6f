package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	if err == nil {
		t.Fatal("Open should fail for a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestOpenRejectsNonDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-db")
	if err := os.WriteFile(path, []byte("just some text, definitely not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("Open should fail for a non-database file")
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	db := newTestDB(t, seedAlbums)

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var sync int
	if err := db.QueryRow("PRAGMA synchronous").Scan(&sync); err != nil {
		t.Fatalf("synchronous: %v", err)
	}
	if sync != 1 { // NORMAL
		t.Errorf("synchronous = %d, want 1", sync)
	}
}

func TestListTables(t *testing.T) {
	db := newTestDB(t,
		`CREATE TABLE zebra (id INTEGER)`,
		`CREATE TABLE apple (id INTEGER)`,
	)

	names, err := db.ListTables()
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"apple", "zebra"}) {
		t.Errorf("names = %v, want sorted [apple zebra]", names)
	}
}

func TestListTablesEmptyDatabase(t *testing.T) {
	db := newTestDB(t)

	names, err := db.ListTables()
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("names = %v, want none", names)
	}
}

func TestDescribeColumns(t *testing.T) {
	db := newTestDB(t, seedAlbums)

	cols, err := db.DescribeColumns("albums")
	if err != nil {
		t.Fatalf("DescribeColumns: %v", err)
	}

	want := []types.ColumnMeta{
		{Name: "id", Affinity: types.AffinityInteger, PrimaryKey: true},
		{Name: "title", Affinity: types.AffinityText, NotNull: true},
		{Name: "year", Affinity: types.AffinityInteger},
		{Name: "cover", Affinity: types.AffinityBlob},
		{Name: "rating", Affinity: types.AffinityReal, HasDefault: true},
	}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("cols = %+v, want %+v", cols, want)
	}
}

func TestDescribeColumnsUnknownTable(t *testing.T) {
	db := newTestDB(t, seedAlbums)

	_, err := db.DescribeColumns("ghosts")
	if !errors.Is(err, types.ErrTableNotFound) {
		t.Errorf("err = %v, want ErrTableNotFound", err)
	}
}

func TestDescribeColumnsRejectsInjection(t *testing.T) {
	db := newTestDB(t, seedAlbums)

	// A malicious table name never reaches statement text: it fails the
	// schema-listing check first.
	_, err := db.DescribeColumns(`albums"); DROP TABLE albums; --`)
	if !errors.Is(err, types.ErrTableNotFound) {
		t.Errorf("err = %v, want ErrTableNotFound", err)
	}

	names, err := db.ListTables()
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"albums"}) {
		t.Errorf("albums table should survive, got %v", names)
	}
}
