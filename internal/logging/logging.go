// Package logging builds the zerolog logger shared by the chatbot components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New
type Options struct {
	// File receives all log output. Empty disables file logging.
	File string
	// Level is a zerolog level name; empty means info.
	Level string
	// Verbose forces debug level.
	Verbose bool
	// Console mirrors log output to this writer in human-readable form.
	// The TUI leaves it nil so the screen is never written to.
	Console io.Writer
}

// ParseLevel converts a level name to a zerolog level, defaulting to info
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	if lvl == zerolog.NoLevel {
		return zerolog.InfoLevel, nil
	}
	return lvl, nil
}

// New returns a logger and a close function for the underlying file.
// When neither a file nor a console is configured the logger discards output.
func New(opts Options) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), noop, err
	}
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	var writers []io.Writer
	closeFn := noop

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closeFn = f.Close
	}

	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.TimeOnly,
			NoColor:    true,
		})
	}

	if len(writers) == 0 {
		return zerolog.Nop(), noop, nil
	}

	var out io.Writer = writers[0]
	if len(writers) > 1 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("app", "chatbot").Logger()
	return logger, closeFn, nil
}
