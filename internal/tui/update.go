package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aymanbagabas/go-osc52/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Firstp1ck/SQLite-TUI/internal/sqlite"
	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case responseMsg:
		m.apply(sqlite.Response(msg))
		return m, m.waitForResponse()

	case workerDoneMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch m.mode {
		case modeEditing:
			return m.updateEditing(msg)
		case modeFilter:
			return m.updateFilter(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

// apply folds one worker response into the view state.
func (m *Model) apply(resp sqlite.Response) {
	m.pending = false
	switch msg := resp.Msg.(type) {
	case sqlite.Schema:
		m.tables = msg.Tables
		if m.selectedTable >= len(m.tables) {
			m.selectedTable = 0
		}
		m.status = fmt.Sprintf("Loaded %d tables", len(m.tables))

	case sqlite.Page:
		if msg.Columns == nil && msg.Rows == nil {
			// Count-only page.
			if msg.HasTotal {
				m.total = msg.Total
				m.hasTotal = true
			}
			return
		}
		m.table = msg.Table
		m.meta = msg.Columns
		m.columns = make([]string, 0, len(msg.Columns)+1)
		m.columns = append(m.columns, types.RowIDColumn)
		for _, c := range msg.Columns {
			m.columns = append(m.columns, c.Name)
		}
		m.rows = msg.Rows
		m.total = msg.Total
		m.hasTotal = msg.HasTotal
		if m.selRow >= len(m.rows) {
			m.selRow = max(0, len(m.rows)-1)
		}
		if m.selCol >= len(m.columns) {
			m.selCol = max(0, len(m.columns)-1)
		}
		total := ""
		if m.hasTotal {
			total = fmt.Sprintf(", %d rows total", m.total)
		}
		m.status = fmt.Sprintf("Viewing %s, page %d (%d rows/page)%s",
			msg.Table, m.page.Index, m.page.Size, total)

	case sqlite.Ack:
		m.finishExport(true, msg.Rows)
		if msg.Column != "" {
			m.status = fmt.Sprintf("Updated %s (rowid %d)", msg.Column, msg.RowID)
			m.reload()
		}

	case sqlite.Error:
		m.finishExport(false, 0)
		m.status = fmt.Sprintf("Error (%s): %s", msg.Kind, msg.Message)
	}
}

// finishExport closes the export sink when its response arrives. A
// failed export's file is left in place; the status line tells the user
// not to trust it.
func (m *Model) finishExport(ok bool, rows int64) {
	if m.exportFile == nil {
		return
	}
	m.exportFile.Close()
	if ok {
		m.status = fmt.Sprintf("Exported %d rows to %s", rows, m.exportPath)
	} else {
		m.status = fmt.Sprintf("Export to %s failed; discard the partial file", m.exportPath)
	}
	m.exportFile = nil
	m.exportPath = ""
}

func (m Model) updateNormal(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q", "ctrl+c":
		m.worker.Stop()
		return m, nil

	case "?":
		m.showHelp = !m.showHelp

	case "tab":
		if m.focus == focusTables {
			m.focus = focusData
		} else {
			m.focus = focusTables
		}

	case "up", "k":
		if m.focus == focusTables {
			m.moveTableSelection(-1)
		} else if m.selRow > 0 {
			m.selRow--
		}

	case "down", "j":
		if m.focus == focusTables {
			m.moveTableSelection(1)
		} else if m.selRow < len(m.rows)-1 {
			m.selRow++
		}

	case "left", "h":
		if m.focus == focusData && m.selCol > 0 {
			m.selCol--
		}

	case "right", "l":
		if m.focus == focusData && m.selCol < len(m.columns)-1 {
			m.selCol++
		}

	case "enter":
		if m.focus == focusTables {
			// Opening a table resets the per-table view state.
			m.filter = types.FilterSpec{}
			m.sort = types.SortSpec{}
			m.selRow, m.selCol = 0, 0
			m.loadPage(1)
			m.focus = focusData
		}

	case "pgdown", "ctrl+f":
		if m.table != "" {
			m.loadPage(m.page.Index + 1)
		}

	case "pgup", "ctrl+b":
		if m.table != "" && m.page.Index > 1 {
			m.loadPage(m.page.Index - 1)
		}

	case "r":
		if m.table != "" {
			m.worker.Submit(sqlite.Reload{Table: m.table})
			m.reload()
		}

	case "e":
		m.beginEdit()

	case "/":
		if m.table != "" {
			m.mode = modeFilter
			m.filterInput = m.filter.Pattern
			m.status = "Filter: type pattern, Enter to apply, Esc to cancel"
		}

	case "esc":
		if !m.filter.IsZero() {
			m.filter = types.FilterSpec{}
			m.loadPage(1)
		}

	case "s":
		m.cycleSort()

	case "u":
		if m.table != "" && !m.pending {
			m.worker.Submit(sqlite.Undo{Table: m.table})
			m.pending = true
			m.status = "Undoing..."
		}

	case "x":
		m.beginExport(sqlite.FormatCSV, "csv")

	case "X":
		m.beginExport(sqlite.FormatTSV, "tsv")

	case "c":
		if m.table != "" && len(m.rows) > 0 {
			// OSC 52 reaches the terminal's clipboard even over ssh.
			osc52.New(m.rows[m.selRow][m.selCol].String()).WriteTo(os.Stderr)
			m.status = "Copied cell to clipboard"
		}

	case "C":
		if m.table != "" && len(m.rows) > 0 {
			osc52.New(m.RowTSV(m.selRow)).WriteTo(os.Stderr)
			m.status = "Copied row to clipboard as TSV"
		}

	case "y":
		if m.table != "" && len(m.rows) > 0 {
			osc52.New(m.PageTSV()).WriteTo(os.Stderr)
			m.status = "Copied page to clipboard as TSV"
		}
	}
	return m, nil
}

func (m *Model) moveTableSelection(delta int) {
	if len(m.tables) == 0 {
		return
	}
	m.selectedTable = (m.selectedTable + delta + len(m.tables)) % len(m.tables)
}

// beginEdit enters edit mode on the selected cell, capturing a stable
// rowid so a reload mid-edit cannot retarget the write.
func (m *Model) beginEdit() {
	if m.table == "" || len(m.rows) == 0 || m.pending {
		return
	}
	if m.selCol == 0 {
		m.status = "The rowid column is not editable"
		return
	}
	row := m.rows[m.selRow]
	m.editRowID = row[0].Int()
	m.editBuffer = row[m.selCol].String()
	if row[m.selCol].IsNull() {
		m.editBuffer = ""
	}
	m.editNull = false
	m.mode = modeEditing
	m.status = "Editing: Enter to save, Ctrl+N to set NULL, Esc to cancel"
}

func (m Model) updateEditing(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "enter":
		m.submitEdit()
	case "esc":
		m.mode = modeNormal
		m.status = "Edit cancelled"
	case "ctrl+n":
		// The only way to write an actual NULL; an empty buffer would
		// submit empty text.
		m.editNull = true
		m.status = "Will set NULL (Enter to save, Esc to cancel)"
	case "backspace":
		if len(m.editBuffer) > 0 {
			runes := []rune(m.editBuffer)
			m.editBuffer = string(runes[:len(runes)-1])
		}
	default:
		if key.Type == tea.KeyRunes {
			m.editBuffer += string(key.Runes)
		} else if key.Type == tea.KeySpace {
			m.editBuffer += " "
		}
	}
	return m, nil
}

func (m *Model) submitEdit() {
	m.mode = modeNormal
	value := types.ParseInput(m.editBuffer)
	if m.editNull {
		value = types.Null()
	}
	m.worker.Submit(sqlite.UpdateCell{
		Addr: types.CellAddress{
			Table:  m.table,
			RowID:  m.editRowID,
			Column: m.columns[m.selCol],
		},
		Value: value,
	})
	m.pending = true
	m.status = "Updating cell..."
}

func (m Model) updateFilter(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "enter":
		m.mode = modeNormal
		m.filter = types.FilterSpec{Pattern: m.filterInput}
		m.loadPage(1)
	case "esc":
		m.mode = modeNormal
		m.status = "Filter cancelled"
	case "backspace":
		if len(m.filterInput) > 0 {
			runes := []rune(m.filterInput)
			m.filterInput = string(runes[:len(runes)-1])
		}
	default:
		if key.Type == tea.KeyRunes {
			m.filterInput += string(key.Runes)
		} else if key.Type == tea.KeySpace {
			m.filterInput += " "
		}
	}
	return m, nil
}

// cycleSort advances the selected column through none, ascending,
// descending, none.
func (m *Model) cycleSort() {
	if m.table == "" || m.selCol == 0 || m.selCol >= len(m.columns) {
		return
	}
	col := m.columns[m.selCol]
	switch {
	case m.sort.Column != col:
		m.sort = types.SortSpec{Column: col, Direction: types.Ascending}
	case m.sort.Direction == types.Ascending:
		m.sort.Direction = types.Descending
	default:
		m.sort = types.SortSpec{}
	}
	m.loadPage(1)
}

// beginExport opens a sink file next to the database and submits the
// export with the active filter and sort.
func (m *Model) beginExport(format sqlite.ExportFormat, ext string) {
	if m.table == "" || m.pending || m.exportFile != nil {
		return
	}
	path := fmt.Sprintf("%s-%s.%s", m.table, time.Now().Format("20060102-150405"), ext)
	f, err := os.Create(path)
	if err != nil {
		m.status = fmt.Sprintf("Error (io): %s", err)
		return
	}
	m.exportFile = f
	m.exportPath = path
	m.worker.Submit(sqlite.Export{
		Table:  m.table,
		Filter: m.filter,
		Sort:   m.sort,
		Sink:   f,
		Format: format,
	})
	m.status = fmt.Sprintf("Exporting %s to %s...", m.table, path)
}

// RowTSV renders one loaded row as a single tab-joined line.
func (m Model) RowTSV(index int) string {
	if index < 0 || index >= len(m.rows) {
		return ""
	}
	row := m.rows[index]
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = v.String()
	}
	return strings.Join(cells, "\t")
}

// PageTSV renders the current page, header first, as TSV for the
// clipboard integration layered on top of the core.
func (m Model) PageTSV() string {
	var b strings.Builder
	b.WriteString(strings.Join(m.columns, "\t"))
	b.WriteByte('\n')
	for _, row := range m.rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
