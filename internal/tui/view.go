package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

const (
	cellWidth     = 16
	tablePaneSize = 24
)

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	paneFocusedStyle = paneStyle.
				BorderForeground(lipgloss.Color("62"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))
	statusStyle = lipgloss.NewStyle().Faint(true)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.showHelp {
		return m.helpView()
	}

	left := m.tablesPane()
	right := m.dataPane()
	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	var bottom string
	switch m.mode {
	case modeEditing:
		val := m.editBuffer
		if m.editNull {
			val = "NULL"
		}
		// columns carries the rowid header first; meta does not.
		affinity := m.meta[m.selCol-1].Affinity
		bottom = fmt.Sprintf("edit %s (%s) = %s", m.columns[m.selCol], affinity, val)
	case modeFilter:
		bottom = "filter: " + m.filterInput
	default:
		bottom = statusStyle.Render(m.status)
	}

	return panes + "\n" + bottom + "\n"
}

func (m Model) tablesPane() string {
	lines := make([]string, 0, len(m.tables)+1)
	lines = append(lines, headerStyle.Render("Tables"))
	for i, name := range m.tables {
		line := truncate(name, tablePaneSize-4)
		if i == m.selectedTable {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	style := paneStyle
	if m.focus == focusTables {
		style = paneFocusedStyle
	}
	return style.Width(tablePaneSize).Render(strings.Join(lines, "\n"))
}

func (m Model) dataPane() string {
	style := paneStyle
	if m.focus == focusData {
		style = paneFocusedStyle
	}
	if m.table == "" {
		return style.Render("Select a table and press Enter")
	}

	visible := m.visibleColumns()

	header := make([]string, 0, len(visible))
	for _, ci := range visible {
		name := m.columns[ci]
		if m.sort.Column == name {
			if m.sort.Direction == types.Ascending {
				name += " ^"
			} else {
				name += " v"
			}
		}
		header = append(header, pad(name))
	}
	lines := []string{headerStyle.Render(strings.Join(header, " "))}

	for ri, row := range m.rows {
		cells := make([]string, 0, len(visible))
		for _, ci := range visible {
			cell := pad(row[ci].String())
			if m.focus == focusData && ri == m.selRow && ci == m.selCol {
				cell = selectedStyle.Render(cell)
			}
			cells = append(cells, cell)
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	if !m.filter.IsZero() {
		lines = append(lines, statusStyle.Render("filtered: "+m.filter.Pattern))
	}
	return style.Render(strings.Join(lines, "\n"))
}

// visibleColumns returns the column indices that fit the width, always
// keeping the selected column in view.
func (m Model) visibleColumns() []int {
	avail := m.width - tablePaneSize - 6
	if avail < cellWidth {
		avail = cellWidth
	}
	capacity := avail / (cellWidth + 1)
	if capacity < 1 {
		capacity = 1
	}
	if capacity >= len(m.columns) {
		idx := make([]int, len(m.columns))
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	start := 0
	if m.selCol >= capacity {
		start = m.selCol - capacity + 1
	}
	idx := make([]int, 0, capacity)
	for i := start; i < len(m.columns) && len(idx) < capacity; i++ {
		idx = append(idx, i)
	}
	return idx
}

func (m Model) helpView() string {
	help := `sqlite-tui

  Tab         switch pane          e        edit cell
  Up/Down     move                 Ctrl+N   set NULL (while editing)
  Left/Right  move columns         /        filter (Esc clears)
  Enter       open table           s        cycle sort on column
  PgUp/PgDn   page                 u        undo last edit
  r           reload               x / X    export CSV / TSV
  c / C / y   copy cell / row / page
  q           quit                 ?        close help`
	return paneStyle.Render(help) + "\n"
}

func pad(s string) string {
	s = truncate(s, cellWidth)
	return s + strings.Repeat(" ", cellWidth-len([]rune(s)))
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}
