package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// HomeEnv overrides the configuration directory.
	HomeEnv = "GEMCLI_HOME"
)

var (
	// ConfigDir is the global configuration directory (~/.gemcli)
	ConfigDir string

	// SettingsFile is the YAML settings file
	SettingsFile string

	// HistoryFile is the durable command history log
	HistoryFile string

	// DatabasePath is the SQLite database holding pinned certificates
	DatabasePath string

	// KeybindsFile is the optional key binding override file
	KeybindsFile string

	// LogFile receives the structured log
	LogFile string
)

// Initialize sets up the configuration directory and paths.
// It creates ~/.gemcli/ (or $GEMCLI_HOME) if it doesn't exist and writes a
// default settings file on first run.
func Initialize() error {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".gemcli")
	}

	SetPaths(dir)

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		if err := Save(SettingsFile, Defaults()); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// SetPaths points every path variable into dir.
func SetPaths(dir string) {
	ConfigDir = dir
	SettingsFile = filepath.Join(ConfigDir, "config.yaml")
	HistoryFile = filepath.Join(ConfigDir, "history.txt")
	DatabasePath = filepath.Join(ConfigDir, "gemcli.db")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.jsonc")
	LogFile = filepath.Join(ConfigDir, "gemcli.log")
}
