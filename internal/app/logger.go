// Package app holds the process-level setup shared by the commands.
package app

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a logger writing to w. level is any name slog.Level
// understands ("debug", "WARN", "info+2"); an empty or unknown level logs at
// info. format "json" selects the JSON handler, anything else text. The
// global logger is left alone.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel reads a slog level name, falling back to info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
