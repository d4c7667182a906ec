package observability

import (
	"io"
	"log/slog"
	"strings"
)

// NewTextLogger builds a text logger writing to w, for command-line tools.
// The service itself logs through the shared observability logger.
func NewTextLogger(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	return slog.New(slog.NewTextHandler(w, opts)).With("service", "quake-feed")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
