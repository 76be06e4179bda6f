package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

// queueDepth bounds the request and response channels. The presentation
// layer keeps at most a handful of commands in flight; the bound only
// matters if a caller misbehaves.
const queueDepth = 64

// Worker is the single-threaded actor owning the connection. It
// consumes commands strictly in arrival order and emits exactly one
// response per command before dequeuing the next, so an UpdateCell
// followed by a LoadPage on the same row always observes the update.
// Recoverable errors become Error responses; the loop only stops on
// context cancellation or Stop.
type Worker struct {
	db     *DB
	editor *Editor
	log    *slog.Logger

	requests  chan Request
	responses chan Response

	mu      sync.Mutex
	stopped bool
}

// NewWorker creates a worker over an opened database.
func NewWorker(db *DB, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		db:        db,
		editor:    NewEditor(db),
		log:       log,
		requests:  make(chan Request, queueDepth),
		responses: make(chan Response, queueDepth),
	}
}

// Submit enqueues a command and returns its correlation ID. Returns
// ErrWorkerClosed after Stop and ErrQueueFull when the command queue has
// backlogged to capacity. The enqueue never blocks: a blocking send here
// would hold the mutex and deadlock Stop behind a stalled consumer.
func (w *Worker) Submit(cmd Command) (uuid.UUID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return uuid.Nil, types.ErrWorkerClosed
	}
	id := newRequestID()
	select {
	case w.requests <- Request{ID: id, Cmd: cmd}:
		return id, nil
	default:
		return uuid.Nil, types.ErrQueueFull
	}
}

// Stop closes the command queue. Run drains what was already enqueued
// and then returns.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.stopped {
		w.stopped = true
		close(w.requests)
	}
}

// Responses is the ordered response channel; responses carry the ID of
// the request that produced them.
func (w *Worker) Responses() <-chan Response {
	return w.responses
}

// Run processes commands until the queue is closed or ctx is cancelled.
// It closes the response channel on return.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.responses)
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-w.requests:
			if !ok {
				return
			}
			msg := w.handle(ctx, req.Cmd)
			if e, isErr := msg.(Error); isErr {
				w.log.Warn("command failed",
					"cmd", req.Cmd.commandName(), "kind", string(e.Kind), "err", e.Message)
			} else {
				w.log.Debug("command done", "cmd", req.Cmd.commandName())
			}
			select {
			case <-ctx.Done():
				return
			case w.responses <- Response{ID: req.ID, Msg: msg}:
			}
		}
	}
}

// handle dispatches one command and maps any failure to an Error
// message keyed by its kind.
func (w *Worker) handle(ctx context.Context, cmd Command) Message {
	var msg Message
	var err error

	switch c := cmd.(type) {
	case ListTables:
		msg, err = w.listTables()
	case LoadPage:
		msg, err = w.loadPage(c)
	case Count:
		msg, err = w.count(c)
	case UpdateCell:
		msg, err = w.updateCell(c)
	case Undo:
		msg, err = w.undo(c)
	case Export:
		msg, err = w.export(ctx, c)
	case Reload:
		msg, err = w.reload(c)
	default:
		err = fmt.Errorf("unknown command %T", cmd)
	}

	if err != nil {
		return Error{Kind: types.KindOf(err), Message: err.Error(), Cmd: cmd}
	}
	return msg
}

func (w *Worker) listTables() (Message, error) {
	tables, err := w.db.ListTables()
	if err != nil {
		return nil, err
	}
	return Schema{Tables: tables}, nil
}

func (w *Worker) loadPage(c LoadPage) (Message, error) {
	cols, err := w.db.DescribeColumns(c.Table)
	if err != nil {
		return nil, err
	}
	stmt, err := SelectPage(c.Table, cols, c.Filter, c.Sort, c.Page)
	if err != nil {
		return nil, err
	}

	rows, err := w.db.Query(stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}
	defer rows.Close()

	width := len(cols) + 1 // rowid is always projected first
	raw := make([]any, width)
	ptrs := make([]any, width)
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	var data [][]types.Value
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning page row: %w", err)
		}
		row := make([]types.Value, width)
		for i, v := range raw {
			row[i] = types.FromColumn(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}

	page := Page{Table: c.Table, Columns: cols, Rows: data, Page: c.Page}
	if c.WantCount {
		// Best effort: a failed count leaves the total unknown rather
		// than failing the load.
		if total, err := w.countRows(c.Table, cols, c.Filter); err == nil {
			page.Total = total
			page.HasTotal = true
		}
	}
	return page, nil
}

func (w *Worker) count(c Count) (Message, error) {
	cols, err := w.db.DescribeColumns(c.Table)
	if err != nil {
		return nil, err
	}
	total, err := w.countRows(c.Table, cols, c.Filter)
	if err != nil {
		return nil, err
	}
	return Page{Table: c.Table, Total: total, HasTotal: true}, nil
}

func (w *Worker) countRows(table string, cols []types.ColumnMeta, filter types.FilterSpec) (int64, error) {
	stmt := CountRows(table, cols, filter)
	var total int64
	if err := w.db.QueryRow(stmt.SQL, stmt.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	return total, nil
}

func (w *Worker) updateCell(c UpdateCell) (Message, error) {
	if err := w.editor.UpdateCell(c.Addr, c.Value); err != nil {
		return nil, err
	}
	return Ack{RowID: c.Addr.RowID, Column: c.Addr.Column}, nil
}

func (w *Worker) undo(c Undo) (Message, error) {
	addr, err := w.editor.Undo(c.Table)
	if err != nil {
		return nil, err
	}
	return Ack{RowID: addr.RowID, Column: addr.Column}, nil
}

func (w *Worker) export(ctx context.Context, c Export) (Message, error) {
	n, err := StreamExport(ctx, w.db, c.Table, c.Columns, c.Filter, c.Sort, c.Sink, c.Format)
	if err != nil {
		return nil, err
	}
	return Ack{Rows: n}, nil
}

func (w *Worker) reload(c Reload) (Message, error) {
	cols, err := w.db.DescribeColumns(c.Table)
	if err != nil {
		return nil, err
	}
	return Page{Table: c.Table, Columns: cols}, nil
}

// newRequestID generates a UUID v7 correlation ID, falling back to v4
// if v7 generation fails.
func newRequestID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
