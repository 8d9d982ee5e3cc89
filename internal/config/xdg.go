// ABOUTME: XDG Base Directory specification helpers
// ABOUTME: Resolves oracle's data and config directories with fallbacks
package config

import (
	"os"
	"path/filepath"
)

// AppName names oracle's XDG subdirectories.
const AppName = "oracle"

// GetDataHome returns XDG_DATA_HOME or fallback to ~/.local/share
func GetDataHome() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	home := os.Getenv("HOME")
	return filepath.Join(home, ".local", "share")
}

// GetConfigHome returns XDG_CONFIG_HOME or fallback to ~/.config
func GetConfigHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home := os.Getenv("HOME")
	return filepath.Join(home, ".config")
}

// DefaultPath is where the config file lives unless --config says otherwise.
func DefaultPath() string {
	return filepath.Join(GetConfigHome(), AppName, "config.toml")
}

// DefaultSQLitePath is the default location of the local card mirror.
func DefaultSQLitePath() string {
	return filepath.Join(GetDataHome(), AppName, "cards.db")
}
