package types

import "errors"

// ErrorKind classifies a recoverable worker failure for the caller.
type ErrorKind string

const (
	// KindConnection covers failures opening the database file. Only
	// the initial open is fatal; the connection is never reopened
	// mid-session.
	KindConnection ErrorKind = "connection"
	// KindQuery covers a composed statement failing at execution time,
	// e.g. a stale sort column after schema drift.
	KindQuery ErrorKind = "query"
	// KindIdentifierRejected covers a table or column name not present
	// in the current schema metadata, including attempts to edit the
	// rowid column.
	KindIdentifierRejected ErrorKind = "identifier_rejected"
	// KindNothingToUndo is returned for Undo on a table with no
	// recorded mutation.
	KindNothingToUndo ErrorKind = "nothing_to_undo"
	// KindIO covers export sink failures.
	KindIO ErrorKind = "io"
)

// Worker operation errors.
var (
	ErrTableNotFound      = errors.New("table not found")
	ErrColumnNotFound     = errors.New("column not found")
	ErrIdentifierRejected = errors.New("identifier rejected")
	ErrRowNotFound        = errors.New("row not found")
	ErrNothingToUndo      = errors.New("nothing to undo")
	ErrInvalidPage        = errors.New("page size must be positive")
	ErrWorkerClosed       = errors.New("worker is closed")
	ErrQueueFull          = errors.New("command queue is full")
	ErrSinkWrite          = errors.New("export sink write failed")
)

// KindOf maps an error to its ErrorKind. Unclassified errors are query
// errors; the worker stays alive for all of them.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrTableNotFound),
		errors.Is(err, ErrColumnNotFound),
		errors.Is(err, ErrIdentifierRejected):
		return KindIdentifierRejected
	case errors.Is(err, ErrNothingToUndo):
		return KindNothingToUndo
	case errors.Is(err, ErrSinkWrite):
		return KindIO
	default:
		return KindQuery
	}
}
