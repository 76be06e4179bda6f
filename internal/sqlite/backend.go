// Package sqlite implements the database access core: a single-connection
// backend, parameterized query composition, cell mutation with one level
// of undo, streaming export, and the worker loop that serializes all of
// it onto one connection.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

// DB owns the single connection to the target database file. All
// statements in a session run through it; the worker is the only caller
// once the session starts.
type DB struct {
	path string
	db   *sql.DB
}

// Open opens the database file and applies the startup pragmas: WAL
// journaling and relaxed synchronous flushing, a latency/durability
// trade-off suited to an interactive editor. The file must already
// exist; Open never creates a database.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database file: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection, ever. Pragmas are per-connection and the ordering
	// contract assumes statements never interleave.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	// Probe that the file is actually a database; sql.Open is lazy and
	// a bogus file only surfaces on first use.
	if _, err := db.Exec("SELECT 1 FROM sqlite_master LIMIT 1"); err != nil {
		db.Close()
		return nil, fmt.Errorf("not a database: %w", err)
	}

	return &DB{path: path, db: db}, nil
}

// Close releases the connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// ListTables returns user table names in name order, excluding SQLite's
// reserved sqlite_* tables.
func (d *DB) ListTables() ([]string, error) {
	rows, err := d.db.Query(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DescribeColumns returns the ordered column metadata for table. The
// table name is validated against the current schema listing before it
// is ever interpolated into a statement.
func (d *DB) DescribeColumns(table string) ([]types.ColumnMeta, error) {
	if err := d.checkTable(table); err != nil {
		return nil, err
	}

	rows, err := d.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("describing %s: %w", table, err)
	}
	defer rows.Close()

	var cols []types.ColumnMeta
	for rows.Next() {
		var (
			cid      int
			name     string
			declType sql.NullString
			notNull  int
			dflt     sql.NullString
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning column info: %w", err)
		}
		cols = append(cols, types.ColumnMeta{
			Name:       name,
			Affinity:   types.AffinityOf(declType.String),
			NotNull:    notNull != 0,
			PrimaryKey: pk != 0,
			HasDefault: dflt.Valid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrTableNotFound, table)
	}
	return cols, nil
}

// checkTable validates that table exists in the current schema listing.
func (d *DB) checkTable(table string) error {
	names, err := d.ListTables()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == table {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", types.ErrTableNotFound, table)
}

// Query runs a composed SELECT.
func (d *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return d.db.Query(query, args...)
}

// QueryRow runs a composed single-row SELECT.
func (d *DB) QueryRow(query string, args ...any) *sql.Row {
	return d.db.QueryRow(query, args...)
}

// Exec runs a composed statement and returns the affected row count.
func (d *DB) Exec(query string, args ...any) (int64, error) {
	res, err := d.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
