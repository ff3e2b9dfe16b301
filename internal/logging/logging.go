package logging

import (
	"io"
	"log/slog"
	"os"
)

// Verbose indicates whether debug logging is enabled.
var Verbose bool

// Logger is the configured slog logger. It defaults to a text handler on
// stderr at info level until Setup is called.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Setup configures the package logger.
// verbose enables debug-level output, jsonOutput switches to the JSON
// handler, and w is the destination (stderr when nil).
func Setup(verbose, jsonOutput bool, w io.Writer) {
	Verbose = verbose

	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	Logger = slog.New(handler)
}

// Debug logs a debug message with structured key/value pairs.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message with structured key/value pairs.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message with structured key/value pairs.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message with structured key/value pairs.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// With returns a logger with the given attributes attached.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}
