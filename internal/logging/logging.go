// Package logging configures the process-wide slog default.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init creates and sets the default slog logger. Logs always go to
// stderr so they never mix with CSV or JSON payloads on stdout; when
// jsonOutput is true the log lines themselves are JSON for machine
// consumption (MCP mode), otherwise text for humans.
func Init(jsonOutput bool, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to
// slog.Level. Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
