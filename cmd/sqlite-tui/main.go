// Package main provides the sqlite-tui CLI: an interactive terminal
// editor for a single SQLite database file, plus non-interactive
// subcommands driving the same database worker.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
