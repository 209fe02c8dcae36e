package device

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with device-specific helpers so that every
// backend reports allocations and transfers with the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithBackend adds the backend name to every record.
func (l *Logger) WithBackend(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", name),
	}
}

// LogAlloc logs an allocation attempt.
func (l *Logger) LogAlloc(kind AllocKind, bytes int, err error) {
	if err != nil {
		l.Error("allocation failed",
			"kind", kind.String(),
			"bytes", bytes,
			"error", err,
		)
		return
	}
	l.Debug("allocation completed",
		"kind", kind.String(),
		"bytes", bytes,
	)
}

// LogFree logs an allocation being returned to its backend.
func (l *Logger) LogFree(kind AllocKind, bytes int) {
	l.Debug("allocation freed",
		"kind", kind.String(),
		"bytes", bytes,
	)
}

// LogTransfer logs a completed or failed copy.
func (l *Logger) LogTransfer(src, dst AddressSpace, bytes int, d time.Duration, err error) {
	if err != nil {
		l.Error("transfer failed",
			"src", src.String(),
			"dst", dst.String(),
			"bytes", bytes,
			"error", err,
		)
		return
	}
	l.Debug("transfer completed",
		"src", src.String(),
		"dst", dst.String(),
		"bytes", bytes,
		"duration", d,
	)
}
