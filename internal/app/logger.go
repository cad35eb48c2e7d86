package app

import (
	"io"
	"log/slog"
)

// newLogger builds an isolated logger for one App; slog.Default is left
// untouched. Unknown levels fall back to info and any format other than
// "json" is text.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(outW, handlerOpts)
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	}
	return slog.New(handler).With("app", "partgrid")
}
