package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
)

var errLogLevel = errors.New("unexpected log level")

// configureLogger installs the default slog logger for the given level and
// output file.
//
// Valid levels are "none", "error", "warn", "info" and "debug". An empty
// logFile logs text to stderr; otherwise JSON lines are written to the file,
// which is returned so the caller can close it.
func configureLogger(logLevel, logFile string, opts slog.HandlerOptions) (*os.File, error) {
	switch logLevel {
	case "none":
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil, nil
	case "error":
		opts.Level = slog.LevelError
	case "warn":
		opts.Level = slog.LevelWarn
	case "info":
		opts.Level = slog.LevelInfo
	case "debug":
		opts.Level = slog.LevelDebug
	default:
		return nil, errLogLevel
	}

	if logFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &opts)))
		return nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, &opts)))
	return f, nil
}
