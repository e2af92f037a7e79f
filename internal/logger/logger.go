// Package logger provides structured, leveled logging built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level is a logging verbosity level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoggerInterface is the logging contract threaded through every constructor
// in this module. No package holds a package-level logger; callers receive
// one explicitly.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, kv ...any)
	Info(ctx context.Context, msg string, kv ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, kv ...any)
	With(kv ...any) LoggerInterface
}

// Logger is a slog-backed LoggerInterface implementation.
type Logger struct {
	slog *slog.Logger
}

// New creates a Logger writing JSON lines to w at the given level. service
// names every record under "service"; extra adds static fields (e.g. build
// metadata) to every record. extra may be nil.
func New(w io.Writer, level Level, service string, extra map[string]any) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level.slogLevel()})
	l := slog.New(h).With("service", service)
	for k, v := range extra {
		l = l.With(k, v)
	}
	return &Logger{slog: l}
}

func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.slog.DebugContext(ctx, msg, kv...)
}

func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.slog.InfoContext(ctx, msg, kv...)
}

func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.slog.WarnContext(ctx, msg, kv...)
}

func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.slog.ErrorContext(ctx, msg, kv...)
}

// With returns a logger that prepends kv to every subsequent record.
func (l *Logger) With(kv ...any) LoggerInterface {
	return &Logger{slog: l.slog.With(kv...)}
}
