package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Firstp1ck/SQLite-TUI/internal/logging"
	"github.com/Firstp1ck/SQLite-TUI/internal/paths"
	"github.com/Firstp1ck/SQLite-TUI/internal/sqlite"
	"github.com/Firstp1ck/SQLite-TUI/internal/tui"
)

const version = "v0.2.0"

// Global flag values.
var (
	flagConfigDir string
	flagPageSize  int
)

var rootCmd = &cobra.Command{
	Use:   "sqlite-tui <db-path>",
	Short: "Terminal editor for a SQLite database file",
	Long: `sqlite-tui opens a single SQLite database file in an interactive
terminal editor: browse tables, page through filtered and sorted rows,
edit cells with one level of undo, and export tables to CSV or TSV.`,
	Version: version,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigForFlags()
		if err != nil {
			return err
		}

		logger, cleanup, err := logging.Setup(cfg.GetString(cfgKeyLogFile), cfg.GetString(cfgKeySeqURL))
		if err != nil {
			return fmt.Errorf("set up logging: %w", err)
		}
		defer cleanup()

		// The only fatal database error: the initial open.
		db, err := sqlite.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer db.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		worker := sqlite.NewWorker(db, logger)
		go worker.Run(ctx)
		defer worker.Stop()

		pageSize := flagPageSize
		if !cmd.Flags().Changed("page-size") {
			if v := cfg.GetInt(cfgKeyPageSize); v > 0 {
				pageSize = v
			}
		}

		program := tea.NewProgram(tui.New(worker, pageSize), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "",
		"configuration directory (default: platform config dir)")
	rootCmd.Flags().IntVarP(&flagPageSize, "page-size", "n", defaultPageSize, "rows per page")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadConfigForFlags resolves the config directory and loads config.yaml.
func loadConfigForFlags() (*viper.Viper, error) {
	configDir, err := paths.ResolveConfigDir(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return loadConfig(configDir)
}
