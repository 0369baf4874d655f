package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const defaultDatabasePath = "$HOME/.local/share/kuota/kuota.db"

// ExpandPath resolves a leading ~ to the home directory and then expands
// $VAR references.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

// ConfigDir is where config.yaml is looked up by default.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kuota"), nil
}

// DatabasePath returns the expanded SQLite database location.
func DatabasePath() string {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = defaultDatabasePath
	}
	return ExpandPath(dbPath)
}
