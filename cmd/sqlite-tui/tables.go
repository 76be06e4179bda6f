package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Firstp1ck/SQLite-TUI/internal/sqlite"
)

var tablesCmd = &cobra.Command{
	Use:   "tables <db-path>",
	Short: "List the user tables in the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := runCommand(args[0], sqlite.ListTables{})
		if err != nil {
			return err
		}
		schema, ok := msg.(sqlite.Schema)
		if !ok {
			return fmt.Errorf("unexpected response %T", msg)
		}
		for _, name := range schema.Tables {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
