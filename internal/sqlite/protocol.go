package sqlite

import (
	"io"

	"github.com/google/uuid"

	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

// Command is one operation submitted to the worker. Commands are
// consumed strictly in arrival order and each produces exactly one
// response message.
type Command interface {
	commandName() string
}

// ListTables asks for the current table listing.
type ListTables struct{}

// LoadPage asks for one page of a table under a filter, sort, and page
// spec, all held by the caller and passed fresh on every load. WantCount
// additionally requests the best-effort total row count.
type LoadPage struct {
	Table     string
	Filter    types.FilterSpec
	Sort      types.SortSpec
	Page      types.PageSpec
	WantCount bool
}

// Count asks for the filtered row count of a table on its own, for
// callers that skipped it on load.
type Count struct {
	Table  string
	Filter types.FilterSpec
}

// UpdateCell writes Value into the addressed cell.
type UpdateCell struct {
	Addr  types.CellAddress
	Value types.Value
}

// Undo reverts the last mutation recorded for the table.
type Undo struct {
	Table string
}

// Export streams the filtered, sorted table to Sink. An empty Columns
// slice exports every column.
type Export struct {
	Table   string
	Columns []string
	Filter  types.FilterSpec
	Sort    types.SortSpec
	Sink    io.Writer
	Format  ExportFormat
}

// Reload refetches the table's column metadata.
type Reload struct {
	Table string
}

func (ListTables) commandName() string { return "list_tables" }
func (LoadPage) commandName() string   { return "load_page" }
func (Count) commandName() string      { return "count" }
func (UpdateCell) commandName() string { return "update_cell" }
func (Undo) commandName() string       { return "undo" }
func (Export) commandName() string     { return "export" }
func (Reload) commandName() string     { return "reload" }

// Message is one worker response body.
type Message interface {
	messageName() string
}

// Schema carries the table listing.
type Schema struct {
	Tables []string
}

// Page carries one loaded page: column metadata in load order and rows
// as positionally aligned value sequences, the synthetic rowid value
// first. HasTotal distinguishes an unknown count from a count of zero.
// Count and Reload reuse Page with the fields they produce.
type Page struct {
	Table    string
	Columns  []types.ColumnMeta
	Rows     [][]types.Value
	Page     types.PageSpec
	Total    int64
	HasTotal bool
}

// Ack confirms a mutation, undo, or export. RowID and Column identify
// the affected cell for mutations; Rows carries the export row count.
type Ack struct {
	RowID  int64
	Column string
	Rows   int64
}

// Error reports a recoverable failure: its kind, a human-readable
// message, and the command that triggered it. The worker stays alive
// and the connection stays usable after every Error.
type Error struct {
	Kind    types.ErrorKind
	Message string
	Cmd     Command
}

func (Schema) messageName() string { return "schema" }
func (Page) messageName() string   { return "page" }
func (Ack) messageName() string    { return "ack" }
func (Error) messageName() string  { return "error" }

// Request pairs a command with its correlation ID.
type Request struct {
	ID  uuid.UUID
	Cmd Command
}

// Response pairs a message with the ID of the request that produced it.
type Response struct {
	ID  uuid.UUID
	Msg Message
}
