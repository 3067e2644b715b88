// Package infrastructure provides the ambient wiring shared by the hub's
// entry points: structured logger construction and the OTel metrics
// pipeline with its prometheus exporter.
package infrastructure

import (
	"log/slog"
	"os"
	"strings"

	"fusionhub/internal/config"
)

// NewLogger builds a slog logger from the logging configuration and sets
// it as the process default.
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
