// Package log provides category-tagged structured logging for flowdraft.
//
// The terminal belongs to the TUI, so records are written as JSON to a rotated
// log file instead of stdout. Until Init or SetOutput is called every record is
// discarded.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Category groups log records by subsystem.
type Category string

// Log categories.
const (
	CatApp       Category = "app"
	CatUI        Category = "ui"
	CatDraft     Category = "draft"
	CatChat      Category = "chat"
	CatHTTP      Category = "http"
	CatConfig    Category = "config"
	CatHealth    Category = "health"
	CatTelemetry Category = "telemetry"
)

// Options configures the file logger.
type Options struct {
	Path       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	closer io.Closer
)

// Init opens the rotated log file described by opts and makes it the
// destination of every package-level logging call. The returned function
// closes the file.
func Init(opts Options) (func() error, error) {
	if opts.Path == "" {
		return func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    orDefault(opts.MaxSizeMB, 10),
		MaxBackups: orDefault(opts.MaxBackups, 3),
		MaxAge:     orDefault(opts.MaxAgeDays, 28),
		Compress:   true,
	}

	setHandler(rotator, ParseLevel(opts.Level), rotator)
	return rotator.Close, nil
}

// SetOutput routes log records to w. Intended for tests and the devserver,
// which logs to stderr.
func SetOutput(w io.Writer, level slog.Level) {
	setHandler(w, level, nil)
}

func setHandler(w io.Writer, level slog.Level, c io.Closer) {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	closer = c
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a config string to a slog level. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns the current logger scoped to a category.
func Logger(cat Category) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.With("category", string(cat))
}

// Debug logs at debug level.
func Debug(cat Category, msg string, args ...any) {
	Logger(cat).Debug(msg, args...)
}

// Info logs at info level.
func Info(cat Category, msg string, args ...any) {
	Logger(cat).Info(msg, args...)
}

// Warn logs at warn level.
func Warn(cat Category, msg string, args ...any) {
	Logger(cat).Warn(msg, args...)
}

// Error logs at error level.
func Error(cat Category, msg string, args ...any) {
	Logger(cat).Error(msg, args...)
}

// ErrorErr logs at error level with err attached under the "error" key.
func ErrorErr(cat Category, msg string, err error, args ...any) {
	Logger(cat).Error(msg, append([]any{"error", err}, args...)...)
}

// SafeGo runs fn in a goroutine and logs, instead of crashing on, a panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Error(CatApp, "Recovered from panic", "goroutine", name, "panic", fmt.Sprint(r),
					"stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
