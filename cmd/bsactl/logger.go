package main

import (
	"io"
	"log/slog"
	"os"
)

// logger receives library debug records. It discards everything until
// initLogger runs.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// initLogger sends records to stderr: debug and up with --verbose, warnings
// and up otherwise.
func initLogger(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
