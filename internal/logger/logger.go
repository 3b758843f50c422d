// Package logger provides structured logging for scraperfix.
// It uses Go's log/slog package with file rotation via lumberjack.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the rotating log file inside Config.LogDir.
const FileName = "scraperfix.log"

// Config holds logger configuration options.
type Config struct {
	// LogDir is the directory where log files are stored.
	// If empty, only stderr logging is enabled.
	LogDir string

	// Debug enables debug-level logging.
	Debug bool

	// JSON enables JSON output format. If false, text format is used.
	JSON bool

	// Component is an optional component name to add to all log entries.
	Component string

	// Output overrides the console writer (stderr by default).
	Output io.Writer
}

// Init initializes the global slog logger with the given configuration.
// The console gets warnings (everything when Debug is set). The rotating
// log file, when LogDir is set, also records info-level run summaries.
// Stdout is left alone: it carries the tool's confirmation output.
func Init(cfg Config) error {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}

	console := cfg.Output
	if console == nil {
		console = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Debug,
	}
	handler := newHandler(console, cfg.JSON, opts)

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			return err
		}

		logFile := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogDir, FileName),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
			Compress:   true,
		}

		fileOpts := &slog.HandlerOptions{
			Level:     min(level, slog.LevelInfo),
			AddSource: cfg.Debug,
		}
		handler = fanout{handler, newHandler(logFile, cfg.JSON, fileOpts)}
	}

	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With("component", cfg.Component)
	}

	slog.SetDefault(logger)
	return nil
}

func newHandler(w io.Writer, json bool, opts *slog.HandlerOptions) slog.Handler {
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// WithComponent returns a new logger with a component attribute.
func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs at warning level.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}
