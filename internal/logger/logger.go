package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New sets up the default slog logger on stderr.
// logLevel: "debug", "info", "warn", "error"
// logFormat: "text" or "json"
func New(logLevel, logFormat string) (*slog.Logger, error) {
	return NewWithWriter(os.Stderr, logLevel, logFormat)
}

// NewWithWriter is New with an explicit destination. The TUI uses it to send
// logs to a file so they do not corrupt the alternate screen.
func NewWithWriter(w io.Writer, logLevel, logFormat string) (*slog.Logger, error) {
	if strings.TrimSpace(logLevel) == "" || strings.TrimSpace(logFormat) == "" {
		return nil, errors.New("logLevel and logFormat must not be empty")
	}

	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, errors.New("invalid logLevel: " + logLevel)
	}

	var handler slog.Handler
	switch strings.ToLower(logFormat) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, errors.New("invalid logFormat: " + logFormat)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
