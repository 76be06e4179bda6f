// Package logging builds the application logger. The TUI owns the
// terminal, so records go to a log file, optionally fanned out to a Seq
// server when one is configured.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	slogseq "github.com/sokkalf/slog-seq"
)

// multiHandler forwards log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// Setup opens the log file and returns the logger plus a cleanup
// function. When seqURL is non-empty a Seq handler is attached
// alongside the file handler; a Seq handler that fails to construct is
// skipped rather than fatal.
func Setup(logFile, seqURL string) (*slog.Logger, func(), error) {
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	fileHandler := slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	if seqURL == "" {
		return slog.New(fileHandler), func() { f.Close() }, nil
	}

	_, seqHandler := slogseq.NewLogger(
		seqURL,
		slogseq.WithBatchSize(16),
		slogseq.WithFlushInterval(500*time.Millisecond),
		slogseq.WithHandlerOptions(&slog.HandlerOptions{
			Level: slog.LevelDebug,
		}),
	)
	if seqHandler == nil {
		return slog.New(fileHandler), func() { f.Close() }, nil
	}

	logger := slog.New(&multiHandler{handlers: []slog.Handler{fileHandler, seqHandler}})
	cleanup := func() {
		seqHandler.Close()
		f.Close()
	}
	return logger, cleanup, nil
}
