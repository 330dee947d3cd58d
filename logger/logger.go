package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const logFileName = "fncall.log"

var (
	baseOnce sync.Once
	base     *slog.Logger
)

// Logger is a component-scoped structured logger. Every record carries the
// component name and the id of the instance that created it.
type Logger struct {
	sl *slog.Logger
}

// NewLogger returns a logger for the named component. id distinguishes
// instances of the same component (a server, a request loop).
func NewLogger(component, id string) *Logger {
	return &Logger{sl: root().With("component", component, "id", id)}
}

// New wraps an existing slog.Logger, mainly so tests can capture output.
func New(sl *slog.Logger) *Logger {
	return &Logger{sl: sl}
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func root() *slog.Logger {
	baseOnce.Do(func() {
		opts := &slog.HandlerOptions{Level: logCfg.Level()}
		if logCfg.LogDir == "" {
			base = slog.New(slog.NewTextHandler(os.Stderr, opts))
			return
		}
		if err := os.MkdirAll(logCfg.LogDir, 0o755); err != nil {
			log.Fatalf("failed to create log dir %s: %s", logCfg.LogDir, err)
		}
		f, err := os.OpenFile(filepath.Join(logCfg.LogDir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("failed to open log file: %s", err)
		}
		base = slog.New(slog.NewJSONHandler(f, opts))
	})
	return base
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.sl.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.sl.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.sl.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.sl.Error(msg, args...) }
