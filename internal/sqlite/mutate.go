package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

// Editor performs read-before-write cell updates and holds the bounded
// per-table undo slot. One live entry per table; each new mutation on a
// table overwrites that table's entry.
type Editor struct {
	db   *DB
	undo map[string]undoEntry
}

type undoEntry struct {
	addr  types.CellAddress
	prior types.Value
}

// NewEditor creates an Editor over the session connection.
func NewEditor(db *DB) *Editor {
	return &Editor{db: db, undo: make(map[string]undoEntry)}
}

// UpdateCell writes value into the addressed cell, recording the prior
// value as the table's undo entry first. The rowid column is never an
// editable target. No separate transaction is needed: the worker is the
// sole writer, so the read and the write cannot interleave with anything.
func (e *Editor) UpdateCell(addr types.CellAddress, value types.Value) error {
	if addr.Column == types.RowIDColumn {
		return fmt.Errorf("%w: %s is not editable", types.ErrIdentifierRejected, addr.Column)
	}
	cols, err := e.db.DescribeColumns(addr.Table)
	if err != nil {
		return err
	}

	prior, err := e.readCell(addr, cols)
	if err != nil {
		return err
	}

	if err := e.applyUpdate(addr, cols, value); err != nil {
		return err
	}
	e.undo[addr.Table] = undoEntry{addr: addr, prior: prior}
	return nil
}

// Undo re-applies the stored prior value for table and clears the slot.
// No redo history is retained.
func (e *Editor) Undo(table string) (types.CellAddress, error) {
	entry, ok := e.undo[table]
	if !ok {
		return types.CellAddress{}, fmt.Errorf("%w: table %s", types.ErrNothingToUndo, table)
	}
	cols, err := e.db.DescribeColumns(entry.addr.Table)
	if err != nil {
		return types.CellAddress{}, err
	}
	if err := e.applyUpdate(entry.addr, cols, entry.prior); err != nil {
		return types.CellAddress{}, err
	}
	delete(e.undo, table)
	return entry.addr, nil
}

// CanUndo reports whether table has a live undo entry.
func (e *Editor) CanUndo(table string) bool {
	_, ok := e.undo[table]
	return ok
}

// readCell fetches the current value of the addressed cell.
func (e *Editor) readCell(addr types.CellAddress, cols []types.ColumnMeta) (types.Value, error) {
	if !hasColumn(cols, addr.Column) {
		return types.Value{}, fmt.Errorf("%w: %s", types.ErrColumnNotFound, addr.Column)
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE rowid = ?", quoteIdent(addr.Column), quoteIdent(addr.Table))
	var raw any
	err := e.db.QueryRow(q, addr.RowID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Value{}, fmt.Errorf("%w: rowid %d", types.ErrRowNotFound, addr.RowID)
	}
	if err != nil {
		return types.Value{}, fmt.Errorf("reading cell: %w", err)
	}
	return types.FromColumn(raw), nil
}

// applyUpdate runs the composed single-cell UPDATE.
func (e *Editor) applyUpdate(addr types.CellAddress, cols []types.ColumnMeta, value types.Value) error {
	stmt, err := UpdateRow(addr.Table, cols, addr.Column, value, addr.RowID)
	if err != nil {
		return err
	}
	n, err := e.db.Exec(stmt.SQL, stmt.Args...)
	if err != nil {
		return fmt.Errorf("updating cell: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: rowid %d", types.ErrRowNotFound, addr.RowID)
	}
	return nil
}
