// Config loading for the sqlite-tui CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Firstp1ck/SQLite-TUI/internal/paths"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyPageSize = "page_size"
	cfgKeyFormat   = "export_format"
	cfgKeyLogFile  = "log_file"
	cfgKeySeqURL   = "seq_url"

	defaultPageSize = 200
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# sqlite-tui configuration

# Rows per page (overridable by --page-size)
page_size: 200

# Default export format: csv or tsv
export_format: csv

# Log file path (default: sqlite-tui.log in this directory)
# log_file:

# Seq server URL for structured log shipping (optional)
# seq_url:
`

// loadConfig reads config.yaml from the config directory using Viper,
// creating the directory and a default config.yaml on first run. A
// missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyPageSize, defaultPageSize)
	v.SetDefault(cfgKeyFormat, "csv")
	v.SetDefault(cfgKeyLogFile, paths.DefaultLogFile(configDir))
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
