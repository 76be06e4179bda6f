package types

import "strings"

// RowIDColumn is the synthetic column exposing SQLite's implicit rowid.
// It is always the first projected column of a page and is never an
// editable target.
const RowIDColumn = "__rowid__"

// Affinity is a column's declared preferred storage class.
type Affinity string

const (
	AffinityInteger Affinity = "integer"
	AffinityReal    Affinity = "real"
	AffinityText    Affinity = "text"
	AffinityBlob    Affinity = "blob"
	AffinityNumeric Affinity = "numeric"
)

// ColumnMeta describes one column of a loaded table. Sequences of
// ColumnMeta are ordered and index-stable within a loaded page.
type ColumnMeta struct {
	Name       string
	Affinity   Affinity
	NotNull    bool
	PrimaryKey bool
	HasDefault bool
}

// AffinityOf derives the affinity of a declared column type following
// SQLite's type affinity rules: INT wins, then TEXT-ish, then BLOB or a
// missing declaration, then REAL, and NUMERIC for everything else.
func AffinityOf(declaredType string) Affinity {
	d := strings.ToUpper(declaredType)
	switch {
	case strings.Contains(d, "INT"):
		return AffinityInteger
	case strings.Contains(d, "CHAR"), strings.Contains(d, "CLOB"), strings.Contains(d, "TEXT"):
		return AffinityText
	case strings.Contains(d, "BLOB"), d == "":
		return AffinityBlob
	case strings.Contains(d, "REAL"), strings.Contains(d, "FLOA"), strings.Contains(d, "DOUB"):
		return AffinityReal
	default:
		return AffinityNumeric
	}
}

// CellAddress names a single editable cell: table, implicit row key, and
// column name. RowID is never user-editable.
type CellAddress struct {
	Table  string
	RowID  int64
	Column string
}

// SortDirection orders a sorted column.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// SQL returns the ORDER BY keyword for the direction.
func (d SortDirection) SQL() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// FilterSpec is a single pattern applied case-insensitively as a
// substring match across all columns. The zero value means no filter.
type FilterSpec struct {
	Pattern string
}

// IsZero reports whether the filter is absent.
func (f FilterSpec) IsZero() bool { return f.Pattern == "" }

// SortSpec is an optional column + direction. The zero value means
// natural storage order.
type SortSpec struct {
	Column    string
	Direction SortDirection
}

// IsZero reports whether no explicit sort was requested.
func (s SortSpec) IsZero() bool { return s.Column == "" }

// PageSpec is a 1-based page index with a positive page size.
type PageSpec struct {
	Index int
	Size  int
}

// Offset returns the row offset of the page's first row.
func (p PageSpec) Offset() int {
	if p.Index < 1 {
		return 0
	}
	return (p.Index - 1) * p.Size
}
