package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// LogOptions configures SetupLogging.
type LogOptions struct {
	WorkDir string
	Level   string // "debug", "info", "warn", "error"
	// Console, when non-nil, receives human-readable output in addition to
	// the JSON log file.
	Console io.Writer
}

// SetupLogging points the global zerolog logger at <WorkDir>/.logs/lmstudio_tray.log.
// The file is truncated so each run starts with a fresh log. The returned
// closer flushes and closes the file.
func SetupLogging(opts LogOptions) (io.Closer, string, error) {
	path := LogFile(opts.WorkDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	zerolog.TimeFieldFormat = consoleTimeFormat
	zerolog.ErrorFieldName = "err"

	var out io.Writer = f
	if opts.Console != nil {
		out = zerolog.MultiLevelWriter(f, zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: consoleTimeFormat})
	}
	log.Logger = zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()

	return f, path, nil
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
