package sqlite

import (
	"fmt"
	"strings"

	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

// Statement is a composed SQL string with its bound parameters. Literal
// values are always bound; identifiers are only ever interpolated after
// validation against the column metadata the statement was composed from.
type Statement struct {
	SQL  string
	Args []any
}

// quoteIdent double-quotes an identifier, escaping embedded quotes. It
// is applied to validated identifiers only; the quoting is belt-and-
// braces for names that are themselves legal but awkward (spaces,
// keywords).
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// hasColumn reports whether name is present in cols.
func hasColumn(cols []types.ColumnMeta, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}

// filterClause builds the OR-chain substring test across every column,
// each cast to text and matched case-insensitively against the bound
// pattern. instr keeps LIKE wildcards in the pattern inert. An absent
// filter yields no clause at all rather than an always-true predicate.
func filterClause(cols []types.ColumnMeta, filter types.FilterSpec) (string, []any) {
	if filter.IsZero() {
		return "", nil
	}
	tests := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		tests = append(tests, fmt.Sprintf("instr(lower(CAST(%s AS TEXT)), lower(?)) > 0", quoteIdent(c.Name)))
		args = append(args, filter.Pattern)
	}
	return "(" + strings.Join(tests, " OR ") + ")", args
}

// orderClause builds the ORDER BY for an optional sort, always
// tie-breaking by rowid so pagination stays stable under duplicate sort
// keys. The sort column must be present in cols.
func orderClause(cols []types.ColumnMeta, sort types.SortSpec) (string, error) {
	if sort.IsZero() {
		return "", nil
	}
	if !hasColumn(cols, sort.Column) {
		return "", fmt.Errorf("%w: sort column %s", types.ErrColumnNotFound, sort.Column)
	}
	return fmt.Sprintf(" ORDER BY %s %s, rowid", quoteIdent(sort.Column), sort.Direction.SQL()), nil
}

// SelectPage composes the paged SELECT for a table: rowid first as the
// synthetic __rowid__ column, then every column in metadata order.
func SelectPage(table string, cols []types.ColumnMeta, filter types.FilterSpec, sort types.SortSpec, page types.PageSpec) (Statement, error) {
	if page.Size <= 0 {
		return Statement{}, types.ErrInvalidPage
	}

	proj := make([]string, 0, len(cols)+1)
	proj = append(proj, "rowid AS "+quoteIdent(types.RowIDColumn))
	for _, c := range cols {
		proj = append(proj, quoteIdent(c.Name))
	}

	var b strings.Builder
	var args []any
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(proj, ", "), quoteIdent(table))

	if clause, filterArgs := filterClause(cols, filter); clause != "" {
		b.WriteString(" WHERE " + clause)
		args = append(args, filterArgs...)
	}

	order, err := orderClause(cols, sort)
	if err != nil {
		return Statement{}, err
	}
	b.WriteString(order)

	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, page.Size, page.Offset())

	return Statement{SQL: b.String(), Args: args}, nil
}

// CountRows composes the best-effort COUNT for a table under a filter.
func CountRows(table string, cols []types.ColumnMeta, filter types.FilterSpec) Statement {
	sql := "SELECT COUNT(*) FROM " + quoteIdent(table)
	clause, args := filterClause(cols, filter)
	if clause != "" {
		sql += " WHERE " + clause
	}
	return Statement{SQL: sql, Args: args}
}

// UpdateRow composes the single-cell UPDATE addressed by rowid. The
// target column must be present in cols and may not be the rowid column.
func UpdateRow(table string, cols []types.ColumnMeta, column string, value types.Value, rowid int64) (Statement, error) {
	if column == types.RowIDColumn {
		return Statement{}, fmt.Errorf("%w: %s is not editable", types.ErrIdentifierRejected, column)
	}
	if !hasColumn(cols, column) {
		return Statement{}, fmt.Errorf("%w: %s", types.ErrColumnNotFound, column)
	}
	sql := fmt.Sprintf("UPDATE %s SET %s = ? WHERE rowid = ?", quoteIdent(table), quoteIdent(column))
	return Statement{SQL: sql, Args: []any{value.Bind(), rowid}}, nil
}

// SelectForExport composes the unpaginated export SELECT with an
// explicit column projection. Every projected column must be present in
// cols; an empty projection means all columns.
func SelectForExport(table string, cols []types.ColumnMeta, columns []string, filter types.FilterSpec, sort types.SortSpec) (Statement, error) {
	if len(columns) == 0 {
		columns = make([]string, len(cols))
		for i, c := range cols {
			columns[i] = c.Name
		}
	}
	proj := make([]string, len(columns))
	for i, name := range columns {
		if !hasColumn(cols, name) {
			return Statement{}, fmt.Errorf("%w: %s", types.ErrColumnNotFound, name)
		}
		proj[i] = quoteIdent(name)
	}

	var b strings.Builder
	var args []any
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(proj, ", "), quoteIdent(table))

	if clause, filterArgs := filterClause(cols, filter); clause != "" {
		b.WriteString(" WHERE " + clause)
		args = append(args, filterArgs...)
	}

	order, err := orderClause(cols, sort)
	if err != nil {
		return Statement{}, err
	}
	b.WriteString(order)

	return Statement{SQL: b.String(), Args: args}, nil
}
