package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output so correlation
// ids stay machine-searchable.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("service", "bookify")
}
