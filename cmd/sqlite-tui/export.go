package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Firstp1ck/SQLite-TUI/internal/sqlite"
	"github.com/Firstp1ck/SQLite-TUI/pkg/types"
)

var (
	flagExportOut     string
	flagExportFormat  string
	flagExportFilter  string
	flagExportSort    string
	flagExportDesc    bool
	flagExportColumns []string
)

var exportCmd = &cobra.Command{
	Use:   "export <db-path> <table>",
	Short: "Export a table as delimited text",
	Long: `Export streams a full table, filtered and sorted like the interactive
view, to a file or stdout. A header line comes first; csv is comma-
delimited with minimal quoting, tsv is tab-delimited and unquoted.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(flagExportFormat)
		if err != nil {
			return err
		}

		sink := cmd.OutOrStdout()
		if flagExportOut != "" {
			f, err := os.Create(flagExportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", flagExportOut, err)
			}
			defer f.Close()
			sink = f
		}

		sort := types.SortSpec{Column: flagExportSort}
		if flagExportDesc {
			sort.Direction = types.Descending
		}

		msg, err := runCommand(args[0], sqlite.Export{
			Table:   args[1],
			Columns: flagExportColumns,
			Filter:  types.FilterSpec{Pattern: flagExportFilter},
			Sort:    sort,
			Sink:    sink,
			Format:  format,
		})
		if err != nil {
			return err
		}
		if ack, ok := msg.(sqlite.Ack); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows\n", ack.Rows)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "", "csv or tsv (default: config export_format)")
	exportCmd.Flags().StringVar(&flagExportFilter, "filter", "", "substring filter across all columns")
	exportCmd.Flags().StringVar(&flagExportSort, "sort", "", "sort column")
	exportCmd.Flags().BoolVar(&flagExportDesc, "desc", false, "sort descending")
	exportCmd.Flags().StringSliceVar(&flagExportColumns, "columns", nil, "columns to export (default: all)")
}

// parseFormat maps the flag or configured format name to ExportFormat.
func parseFormat(name string) (sqlite.ExportFormat, error) {
	if name == "" {
		if cfg, err := loadConfigForFlags(); err == nil {
			name = cfg.GetString(cfgKeyFormat)
		}
	}
	switch strings.ToLower(name) {
	case "", "csv":
		return sqlite.FormatCSV, nil
	case "tsv":
		return sqlite.FormatTSV, nil
	default:
		return sqlite.FormatCSV, fmt.Errorf("unknown export format %q", name)
	}
}
