// Package tui is the terminal front end. It issues commands into the
// database worker and renders the responses; all database state lives
// behind the worker, the model only holds view state.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Firstp1ck/SQLite-TUI/internal/sqlite"
	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

type focusArea int

const (
	focusTables focusArea = iota
	focusData
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeEditing
	modeFilter
)

// responseMsg wraps a worker response for the bubbletea update loop.
type responseMsg sqlite.Response

// workerDoneMsg signals that the worker's response channel closed.
type workerDoneMsg struct{}

// Model is the bubbletea model for the editor.
type Model struct {
	worker *sqlite.Worker

	// Schema pane.
	tables        []string
	selectedTable int

	// Data pane. columns carries the synthetic rowid header first,
	// aligned with each row's values.
	table    string
	columns  []string
	meta     []types.ColumnMeta
	rows     [][]types.Value
	page     types.PageSpec
	total    int64
	hasTotal bool

	// View state held by the caller and passed fresh on every load.
	filter types.FilterSpec
	sort   types.SortSpec

	focus  focusArea
	mode   inputMode
	selRow int
	selCol int

	// Editing.
	editBuffer string
	editNull   bool
	editRowID  int64

	filterInput string

	// An export writes into this file until its Ack or Error arrives.
	exportFile *os.File
	exportPath string

	status   string
	showHelp bool
	width    int
	height   int

	// pending suppresses a second mutating command while one is
	// outstanding, so edits never target stale column metadata.
	pending bool
}

// New creates the model over a running worker.
func New(worker *sqlite.Worker, pageSize int) Model {
	return Model{
		worker: worker,
		page:   types.PageSpec{Index: 1, Size: pageSize},
		status: "Press q to quit, Enter to open table, e to edit, / to filter, s to sort, u to undo, ? for help.",
	}
}

// Init requests the schema and starts listening for responses.
func (m Model) Init() tea.Cmd {
	m.worker.Submit(sqlite.ListTables{})
	return m.waitForResponse()
}

// waitForResponse blocks on the worker's response channel as a tea.Cmd.
func (m Model) waitForResponse() tea.Cmd {
	ch := m.worker.Responses()
	return func() tea.Msg {
		resp, ok := <-ch
		if !ok {
			return workerDoneMsg{}
		}
		return responseMsg(resp)
	}
}

// currentTable returns the highlighted table name.
func (m Model) currentTable() string {
	if m.selectedTable < len(m.tables) {
		return m.tables[m.selectedTable]
	}
	return ""
}

// loadPage submits a LoadPage for the active table with the current
// filter, sort, and page spec.
func (m *Model) loadPage(pageIndex int) {
	table := m.currentTable()
	if table == "" {
		return
	}
	if pageIndex < 1 {
		pageIndex = 1
	}
	m.page.Index = pageIndex
	m.worker.Submit(sqlite.LoadPage{
		Table:     table,
		Filter:    m.filter,
		Sort:      m.sort,
		Page:      m.page,
		WantCount: true,
	})
	m.pending = true
	m.status = fmt.Sprintf("Loading %s page %d...", table, pageIndex)
}

// reload re-requests the current page.
func (m *Model) reload() {
	m.loadPage(m.page.Index)
}
