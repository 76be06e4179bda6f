package sqlite

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

// ExportFormat selects the delimited text form of an export.
type ExportFormat int

const (
	// FormatCSV is comma-delimited with minimal quoting.
	FormatCSV ExportFormat = iota
	// FormatTSV is tab-delimited and unquoted.
	FormatTSV
)

// exportBatchRows is how many rows stream between cancellation checks.
const exportBatchRows = 256

// recordWriter abstracts the two delimited forms over one streaming loop.
type recordWriter interface {
	write(record []string) error
	flush() error
}

type csvRecordWriter struct{ w *csv.Writer }

func (c csvRecordWriter) write(record []string) error { return c.w.Write(record) }
func (c csvRecordWriter) flush() error {
	c.w.Flush()
	return c.w.Error()
}

type tsvRecordWriter struct{ w io.Writer }

func (t tsvRecordWriter) write(record []string) error {
	_, err := io.WriteString(t.w, strings.Join(record, "\t")+"\n")
	return err
}
func (t tsvRecordWriter) flush() error { return nil }

// StreamExport streams a full filtered, sorted table to sink: a header of the
// chosen column names, then one record per row, without materializing
// the result set. The context is checked between row batches so a caller
// can abandon a long export. On a sink failure the operation stops and
// the partially written sink is the caller's to discard. Returns the
// number of data rows written.
func StreamExport(ctx context.Context, db *DB, table string, columns []string,
	filter types.FilterSpec, sort types.SortSpec, sink io.Writer, format ExportFormat) (int64, error) {

	cols, err := db.DescribeColumns(table)
	if err != nil {
		return 0, err
	}
	stmt, err := SelectForExport(table, cols, columns, filter, sort)
	if err != nil {
		return 0, err
	}

	rows, err := db.Query(stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, fmt.Errorf("export query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("export columns: %w", err)
	}

	var out recordWriter
	switch format {
	case FormatTSV:
		out = tsvRecordWriter{w: sink}
	default:
		out = csvRecordWriter{w: csv.NewWriter(sink)}
	}

	if err := out.write(names); err != nil {
		return 0, fmt.Errorf("%w: header: %v", types.ErrSinkWrite, err)
	}

	raw := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	record := make([]string, len(names))

	var written int64
	for rows.Next() {
		if written%exportBatchRows == 0 {
			if err := ctx.Err(); err != nil {
				return written, fmt.Errorf("export cancelled: %w", err)
			}
		}
		if err := rows.Scan(ptrs...); err != nil {
			return written, fmt.Errorf("export scan: %w", err)
		}
		for i, v := range raw {
			record[i] = types.FromColumn(v).String()
		}
		if err := out.write(record); err != nil {
			return written, fmt.Errorf("%w: row %d: %v", types.ErrSinkWrite, written+1, err)
		}
		written++
	}
	if err := rows.Err(); err != nil {
		return written, fmt.Errorf("export rows: %w", err)
	}
	if err := out.flush(); err != nil {
		return written, fmt.Errorf("%w: flush: %v", types.ErrSinkWrite, err)
	}
	return written, nil
}
