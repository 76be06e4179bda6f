package sqlite

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

// startWorker runs a worker over db and returns it with a submit-and-wait
// helper that enforces the one-response-per-command contract.
func startWorker(t *testing.T, db *DB) (*Worker, func(Command) Message) {
	t.Helper()

	w := NewWorker(db, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)
	t.Cleanup(w.Stop)

	roundTrip := func(cmd Command) Message {
		t.Helper()
		id, err := w.Submit(cmd)
		if err != nil {
			t.Fatalf("Submit(%T): %v", cmd, err)
		}
		resp, ok := <-w.Responses()
		if !ok {
			t.Fatalf("response channel closed waiting for %T", cmd)
		}
		if resp.ID != id {
			t.Fatalf("response ID %v does not match request %v", resp.ID, id)
		}
		return resp.Msg
	}
	return w, roundTrip
}

func mustPage(t *testing.T, msg Message) Page {
	t.Helper()
	page, ok := msg.(Page)
	if !ok {
		t.Fatalf("expected Page, got %#v", msg)
	}
	return page
}

func rowStrings(rows [][]types.Value) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = v.String()
		}
	}
	return out
}

func TestWorkerListTables(t *testing.T) {
	db := newTestDB(t, seedAlbums)
	_, roundTrip := startWorker(t, db)

	msg := roundTrip(ListTables{})
	schema, ok := msg.(Schema)
	if !ok {
		t.Fatalf("expected Schema, got %#v", msg)
	}
	if len(schema.Tables) != 1 || schema.Tables[0] != "albums" {
		t.Errorf("tables = %v", schema.Tables)
	}
}

func TestWorkerLoadPage(t *testing.T) {
	db := newTestDB(t, seedAlbums, seedAlbumRows)
	_, roundTrip := startWorker(t, db)

	page := mustPage(t, roundTrip(LoadPage{
		Table:     "albums",
		Page:      types.PageSpec{Index: 1, Size: 200},
		WantCount: true,
	}))

	if len(page.Columns) != 5 {
		t.Fatalf("columns = %d, want 5", len(page.Columns))
	}
	if len(page.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(page.Rows))
	}
	// Row values are positionally aligned with rowid first.
	first := page.Rows[0]
	if len(first) != 6 {
		t.Fatalf("row width = %d, want rowid + 5 columns", len(first))
	}
	if first[0].Int() != 1 || first[2].String() != "Blue" {
		t.Errorf("first row = %v", rowStrings(page.Rows)[0])
	}
	if !page.HasTotal || page.Total != 3 {
		t.Errorf("total = %d (has %v), want 3", page.Total, page.HasTotal)
	}
}

func TestWorkerPagination(t *testing.T) {
	db := newTestDB(t, seedAlbums, seedAlbumRows)
	_, roundTrip := startWorker(t, db)

	load := func(index int) Page {
		return mustPage(t, roundTrip(LoadPage{
			Table: "albums",
			Page:  types.PageSpec{Index: index, Size: 2},
		}))
	}

	p1, p2 := load(1), load(2)
	if len(p1.Rows) != 2 || len(p2.Rows) != 1 {
		t.Fatalf("page sizes = %d, %d; want 2, 1", len(p1.Rows), len(p2.Rows))
	}
	// Concatenated pages cover the table in order without overlap.
	titles := []string{}
	for _, row := range append(p1.Rows, p2.Rows...) {
		titles = append(titles, row[2].String())
	}
	want := []string{"Blue", "Horses", "Low"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
	}

	empty := load(3)
	if len(empty.Rows) != 0 {
		t.Errorf("page past the end should be empty, got %d rows", len(empty.Rows))
	}
}

func TestWorkerSortAndFilter(t *testing.T) {
	db := newTestDB(t, seedAlbums, seedAlbumRows)
	_, roundTrip := startWorker(t, db)

	sorted := mustPage(t, roundTrip(LoadPage{
		Table: "albums",
		Sort:  types.SortSpec{Column: "year", Direction: types.Descending},
		Page:  types.PageSpec{Index: 1, Size: 10},
	}))
	var titles []string
	for _, row := range sorted.Rows {
		titles = append(titles, row[2].String())
	}
	if titles[0] != "Low" || titles[1] != "Horses" || titles[2] != "Blue" {
		t.Errorf("descending year order = %v", titles)
	}

	filtered := mustPage(t, roundTrip(LoadPage{
		Table:  "albums",
		Filter: types.FilterSpec{Pattern: "horse"},
		Page:   types.PageSpec{Index: 1, Size: 10},
	}))
	if len(filtered.Rows) != 1 || filtered.Rows[0][2].String() != "Horses" {
		t.Errorf("filtered rows = %v", rowStrings(filtered.Rows))
	}
}

func TestWorkerUpdateThenLoadObservesWrite(t *testing.T) {
	db := newTestDB(t, seedAlbums, seedAlbumRows)
	w, _ := startWorker(t, db)

	// Enqueue the update and the dependent load back to back; FIFO
	// ordering guarantees the load observes the write.
	updateID, err := w.Submit(UpdateCell{
		Addr:  types.CellAddress{Table: "albums", RowID: 1, Column: "title"},
		Value: types.Text("Hejira"),
	})
	if err != nil {
		t.Fatalf("Submit update: %v", err)
	}
	loadID, err := w.Submit(LoadPage{Table: "albums", Page: types.PageSpec{Index: 1, Size: 10}})
	if err != nil {
		t.Fatalf("Submit load: %v", err)
	}

	first := <-w.Responses()
	if first.ID != updateID {
		t.Fatalf("first response for %v, want update %v", first.ID, updateID)
	}
	if _, ok := first.Msg.(Ack); !ok {
		t.Fatalf("expected Ack, got %#v", first.Msg)
	}

	second := <-w.Responses()
	if second.ID != loadID {
		t.Fatalf("second response for %v, want load %v", second.ID, loadID)
	}
	page := mustPage(t, second.Msg)
	if got := page.Rows[0][2].String(); got != "Hejira" {
		t.Errorf("load after update saw %q, want Hejira", got)
	}
}

func TestWorkerUpdateUndoRoundTrip(t *testing.T) {
	db := newTestDB(t, seedAlbums, seedAlbumRows)
	_, roundTrip := startWorker(t, db)

	msg := roundTrip(UpdateCell{
		Addr:  types.CellAddress{Table: "albums", RowID: 2, Column: "year"},
		Value: types.Integer(1980),
	})
	ack, ok := msg.(Ack)
	if !ok {
		t.Fatalf("expected Ack, got %#v", msg)
	}
	if ack.RowID != 2 || ack.Column != "year" {
		t.Errorf("ack = %+v", ack)
	}

	msg = roundTrip(Undo{Table: "albums"})
	if _, ok := msg.(Ack); !ok {
		t.Fatalf("expected Ack for undo, got %#v", msg)
	}

	page := mustPage(t, roundTrip(LoadPage{Table: "albums", Page: types.PageSpec{Index: 1, Size: 10}}))
	if got := page.Rows[1][3].Int(); got != 1975 {
		t.Errorf("year = %d after undo, want 1975", got)
	}
}

func TestWorkerErrorKeepsRunning(t *testing.T) {
	db := newTestDB(t, seedAlbums, seedAlbumRows)
	_, roundTrip := startWorker(t, db)

	msg := roundTrip(LoadPage{Table: "ghosts", Page: types.PageSpec{Index: 1, Size: 10}})
	errMsg, ok := msg.(Error)
	if !ok {
		t.Fatalf("expected Error, got %#v", msg)
	}
	if errMsg.Kind != types.KindIdentifierRejected {
		t.Errorf("kind = %q, want identifier_rejected", errMsg.Kind)
	}
	if _, ok := errMsg.Cmd.(LoadPage); !ok {
		t.Errorf("error should carry the failing command, got %#v", errMsg.Cmd)
	}

	// The worker and connection survive the failure.
	msg = roundTrip(ListTables{})
	if _, ok := msg.(Schema); !ok {
		t.Fatalf("worker should keep serving after an error, got %#v", msg)
	}
}

func TestWorkerUndoNothing(t *testing.T) {
	db := newTestDB(t, seedAlbums, seedAlbumRows)
	_, roundTrip := startWorker(t, db)

	msg := roundTrip(Undo{Table: "albums"})
	errMsg, ok := msg.(Error)
	if !ok {
		t.Fatalf("expected Error, got %#v", msg)
	}
	if errMsg.Kind != types.KindNothingToUndo {
		t.Errorf("kind = %q, want nothing_to_undo", errMsg.Kind)
	}
}

func TestWorkerCount(t *testing.T) {
	db := newTestDB(t, seedAlbums, seedAlbumRows)
	_, roundTrip := startWorker(t, db)

	page := mustPage(t, roundTrip(Count{Table: "albums"}))
	if !page.HasTotal || page.Total != 3 {
		t.Errorf("total = %d (has %v), want 3", page.Total, page.HasTotal)
	}

	page = mustPage(t, roundTrip(Count{Table: "albums", Filter: types.FilterSpec{Pattern: "blue"}}))
	if !page.HasTotal || page.Total != 1 {
		t.Errorf("filtered total = %d, want 1", page.Total)
	}
}

func TestWorkerExport(t *testing.T) {
	db := newTestDB(t, seedAlbums, seedAlbumRows)
	_, roundTrip := startWorker(t, db)

	var buf bytes.Buffer
	msg := roundTrip(Export{Table: "albums", Columns: []string{"title"}, Sink: &buf, Format: FormatCSV})
	ack, ok := msg.(Ack)
	if !ok {
		t.Fatalf("expected Ack, got %#v", msg)
	}
	if ack.Rows != 3 {
		t.Errorf("exported rows = %d, want 3", ack.Rows)
	}
	if buf.String() != "title\nBlue\nHorses\nLow\n" {
		t.Errorf("export = %q", buf.String())
	}
}

func TestWorkerReload(t *testing.T) {
	db := newTestDB(t, seedAlbums)
	_, roundTrip := startWorker(t, db)

	page := mustPage(t, roundTrip(Reload{Table: "albums"}))
	if len(page.Columns) != 5 {
		t.Errorf("columns = %d, want 5", len(page.Columns))
	}
	if page.Rows != nil {
		t.Error("reload carries metadata only")
	}
}

func TestWorkerSubmitAfterStop(t *testing.T) {
	db := newTestDB(t, seedAlbums)
	w := NewWorker(db, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.Stop()
	if _, err := w.Submit(ListTables{}); !errors.Is(err, types.ErrWorkerClosed) {
		t.Errorf("err = %v, want ErrWorkerClosed", err)
	}
}

func TestWorkerSubmitFullQueue(t *testing.T) {
	db := newTestDB(t, seedAlbums)
	// No Run loop: nothing drains the queue, so it backlogs to capacity.
	w := NewWorker(db, nil)

	for i := 0; i < queueDepth; i++ {
		if _, err := w.Submit(ListTables{}); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	// The overflow submit returns instead of blocking.
	if _, err := w.Submit(ListTables{}); !errors.Is(err, types.ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}

	// Stop is not wedged behind the backlog.
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked on a full queue")
	}

	if _, err := w.Submit(ListTables{}); !errors.Is(err, types.ErrWorkerClosed) {
		t.Errorf("err = %v, want ErrWorkerClosed after Stop", err)
	}
}

func TestWorkerStopClosesResponses(t *testing.T) {
	db := newTestDB(t, seedAlbums)
	w := NewWorker(db, nil)
	go w.Run(context.Background())

	id, err := w.Submit(ListTables{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	w.Stop()

	// The enqueued command still gets its response, then the channel
	// closes.
	resp, ok := <-w.Responses()
	if !ok {
		t.Fatal("expected the queued response before close")
	}
	if resp.ID != id {
		t.Errorf("response ID = %v, want %v", resp.ID, id)
	}
	if _, ok := <-w.Responses(); ok {
		t.Error("responses channel should be closed after drain")
	}
}

// TestWorkerBrowseEditScenario walks a small table through pagination,
// descending sort, filtering, an edit, and its undo.
func TestWorkerBrowseEditScenario(t *testing.T) {
	db := newTestDB(t,
		`CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)`,
		`INSERT INTO items (id, label) VALUES (1, 'a'), (2, 'b'), (3, 'c')`,
	)
	_, roundTrip := startWorker(t, db)

	labels := func(page Page) []string {
		out := make([]string, len(page.Rows))
		for i, row := range page.Rows {
			out[i] = row[2].String()
		}
		return out
	}
	load := func(cmd LoadPage) Page { return mustPage(t, roundTrip(cmd)) }

	p1 := load(LoadPage{Table: "items", Page: types.PageSpec{Index: 1, Size: 2}})
	p2 := load(LoadPage{Table: "items", Page: types.PageSpec{Index: 2, Size: 2}})
	if got := append(labels(p1), labels(p2)...); len(got) != 3 ||
		got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("paged labels = %v, want [a b c]", got)
	}

	desc := load(LoadPage{
		Table: "items",
		Sort:  types.SortSpec{Column: "label", Direction: types.Descending},
		Page:  types.PageSpec{Index: 1, Size: 10},
	})
	if got := labels(desc); got[0] != "c" || got[1] != "b" || got[2] != "a" {
		t.Fatalf("descending labels = %v, want [c b a]", got)
	}

	filtered := load(LoadPage{
		Table:  "items",
		Filter: types.FilterSpec{Pattern: "b"},
		Page:   types.PageSpec{Index: 1, Size: 10},
	})
	if len(filtered.Rows) != 1 || filtered.Rows[0][1].Int() != 2 {
		t.Fatalf("filtered rows = %v", rowStrings(filtered.Rows))
	}
	// Same filter again returns the identical result set.
	again := load(LoadPage{
		Table:  "items",
		Filter: types.FilterSpec{Pattern: "b"},
		Page:   types.PageSpec{Index: 1, Size: 10},
	})
	if len(again.Rows) != 1 || again.Rows[0][2].String() != filtered.Rows[0][2].String() {
		t.Fatal("identical filter should reproduce the result set")
	}

	if _, ok := roundTrip(UpdateCell{
		Addr:  types.CellAddress{Table: "items", RowID: 2, Column: "label"},
		Value: types.Text("B"),
	}).(Ack); !ok {
		t.Fatal("expected Ack for update")
	}
	updated := load(LoadPage{Table: "items", Page: types.PageSpec{Index: 1, Size: 10}})
	if got := labels(updated); got[1] != "B" {
		t.Fatalf("labels after update = %v", got)
	}

	if _, ok := roundTrip(Undo{Table: "items"}).(Ack); !ok {
		t.Fatal("expected Ack for undo")
	}
	restored := load(LoadPage{Table: "items", Page: types.PageSpec{Index: 1, Size: 10}})
	if got := labels(restored); got[1] != "b" {
		t.Fatalf("labels after undo = %v, want b restored", got)
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 100; i++ {
		id := newRequestID()
		if seen[id] {
			t.Fatalf("duplicate request ID %v", id)
		}
		seen[id] = true
	}
}
