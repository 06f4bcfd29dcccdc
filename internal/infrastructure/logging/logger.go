package logging

import (
	"customer-manager/internal/config"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/traceid"
)

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger writing to stdout and installs it as the slog default.
func NewLogger(cfg config.LoggerConfig) *slog.Logger {
	logger := NewLoggerTo(os.Stdout, cfg)
	slog.SetDefault(logger)
	return logger
}

func NewLoggerTo(w io.Writer, cfg config.LoggerConfig) *slog.Logger {
	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Encoding, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(traceid.LogHandler(handler))
}
