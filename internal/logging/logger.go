// ABOUTME: Structured logger construction for oracle
// ABOUTME: charmbracelet/log on stderr with a level from flags or ORACLE_LOG_LEVEL
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// LevelEnv overrides the log level when --verbose is not given.
const LevelEnv = "ORACLE_LOG_LEVEL"

// New builds the process logger. verbose forces debug level.
func New(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "oracle",
	})
	logger.SetLevel(Level(verbose, os.Getenv(LevelEnv)))
	return logger
}

// Level resolves the effective level. Unknown names fall back to info.
func Level(verbose bool, name string) log.Level {
	if verbose {
		return log.DebugLevel
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		return log.InfoLevel
	}
	return level
}
