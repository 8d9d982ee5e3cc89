// ABOUTME: Project .oracle file detection and ingest report settings
// ABOUTME: Walks directory tree to find the project root that keeps ingest reports
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectFile marks a directory whose ingest runs are reported locally.
const ProjectFile = ".oracle"

// ProjectConfig controls ingest reports for a project directory.
type ProjectConfig struct {
	Reports      bool   `toml:"reports"`
	ReportDir    string `toml:"report_dir"`
	ReportFormat string `toml:"report_format"`
}

// FindProjectRoot walks up from dir looking for .oracle file
// Returns empty string if not found
func FindProjectRoot(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	current := absDir
	for {
		if _, err := os.Stat(filepath.Join(current, ProjectFile)); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)

		// Stop at filesystem root or home directory
		if parent == current || current == homeDir {
			return "", nil
		}

		current = parent
	}
}

// LoadProjectConfig loads .oracle config from path
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	var cfg ProjectConfig

	// Set defaults
	cfg.ReportDir = "ingest-reports"
	cfg.ReportFormat = "markdown"

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ReportDir resolves where ingest reports for the working directory go.
// It returns "" when no project enables reports.
func ReportDir(cwd string) (dir, format string, err error) {
	root, err := FindProjectRoot(cwd)
	if err != nil || root == "" {
		return "", "", err
	}

	cfg, err := LoadProjectConfig(filepath.Join(root, ProjectFile))
	if err != nil {
		return "", "", err
	}
	if !cfg.Reports {
		return "", "", nil
	}

	dir = cfg.ReportDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return dir, cfg.ReportFormat, nil
}
