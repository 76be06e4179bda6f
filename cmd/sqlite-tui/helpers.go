package main

import (
	"context"
	"fmt"

	"github.com/Firstp1ck/SQLite-TUI/internal/sqlite"
)

// runCommand opens the database, runs a single command through the
// worker, and returns its response message. Used by the non-interactive
// subcommands so they exercise the same path as the interactive editor.
func runCommand(dbPath string, cmd sqlite.Command) (sqlite.Message, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := sqlite.NewWorker(db, nil)
	go worker.Run(ctx)

	id, err := worker.Submit(cmd)
	if err != nil {
		return nil, err
	}
	worker.Stop()

	for resp := range worker.Responses() {
		if resp.ID != id {
			continue
		}
		if e, ok := resp.Msg.(sqlite.Error); ok {
			return nil, fmt.Errorf("%s: %s", e.Kind, e.Message)
		}
		return resp.Msg, nil
	}
	return nil, fmt.Errorf("worker stopped without responding")
}
