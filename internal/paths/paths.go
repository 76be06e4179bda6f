// Package paths resolves the configuration directory and the default
// log file location.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName is the per-user directory name under the platform config root.
const AppDirName = "sqlite-tui"

// EnvConfigDir overrides the configuration directory when set.
const EnvConfigDir = "SQLITE_TUI_CONFIG_DIR"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/sqlite-tui (fallback ~/.config/sqlite-tui)
// macOS:   ~/Library/Application Support/sqlite-tui
// Windows: %APPDATA%/sqlite-tui
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppDirName), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppDirName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > SQLITE_TUI_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// DefaultLogFile returns the default log file path inside the resolved
// configuration directory. A TUI owns the terminal, so logs go to a file
// rather than stderr.
func DefaultLogFile(configDir string) string {
	return filepath.Join(configDir, "sqlite-tui.log")
}
