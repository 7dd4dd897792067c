// Package logging builds the structured loggers used across treesize.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// DebugEnv enables the TUI debug log file when set to any value.
const DebugEnv = "TREESIZE_DEBUG"

// DebugFile is where the TUI writes logs when DebugEnv is set.
const DebugFile = "treesize-debug.log"

// ParseLevel converts a log_level config string to its slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a text logger writing to w at level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ForTUI returns a logger that cannot corrupt the terminal. Logs go to
// DebugFile at debug level only when DebugEnv is set; otherwise they are
// discarded. The returned close func is always safe to call.
func ForTUI() (*slog.Logger, func() error) {
	if os.Getenv(DebugEnv) == "" {
		return Discard(), func() error { return nil }
	}
	f, err := os.OpenFile(DebugFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Discard(), func() error { return nil }
	}
	return New(f, slog.LevelDebug), f.Close
}
