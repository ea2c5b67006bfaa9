// Package logger provides the slog logging wrapper that all DrugGuard packages use to log output.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options selects the handler installed by InitGlobalLogger.
type Options struct {
	Level  slog.Level
	Format string
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

var (
	mu         sync.RWMutex
	slogLogger *slog.Logger
)

// ParseLevel maps a config level name onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// OptionsFromEnv reads DRUGGUARD_LOG_LEVEL and DRUGGUARD_LOG_FORMAT.
// Unknown values fall back to the defaults.
func OptionsFromEnv() Options {
	level, _ := ParseLevel(os.Getenv("DRUGGUARD_LOG_LEVEL"))
	format := FormatText
	if os.Getenv("DRUGGUARD_LOG_FORMAT") == FormatJSON {
		format = FormatJSON
	}

	return Options{Level: level, Format: format}
}

// InitGlobalLogger installs the global logger. It may be called again to
// replace the handler, e.g. once configuration has been loaded.
func InitGlobalLogger(opts Options) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	var handler slog.Handler
	if opts.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true, Level: opts.Level})
	} else {
		handler = newLocalHandler(w, opts.Level)
	}

	mu.Lock()
	slogLogger = slog.New(fieldsHandler{next: handler})
	mu.Unlock()
}

func current() *slog.Logger {
	mu.RLock()
	l := slogLogger
	mu.RUnlock()
	if l != nil {
		return l
	}
	InitGlobalLogger(OptionsFromEnv())

	mu.RLock()
	defer mu.RUnlock()

	return slogLogger
}

// Slog returns the underlying global *slog.Logger.
func Slog() *slog.Logger {
	return current()
}

func log(ctx context.Context, level slog.Level, msg string, a []any) {
	l := current()
	if !l.Handler().Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip [Callers, log, Info/Warn/etc]
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(a...)
	//nolint:errcheck
	l.Handler().Handle(ctx, r)
}

// Debug prints a Debug level log.
//
//nolint:contextcheck,nolintlint
func Debug(msg string, a ...any) {
	log(context.Background(), slog.LevelDebug, msg, a)
}

// DebugContext prints a Debug level log with context.
func DebugContext(ctx context.Context, msg string, a ...any) {
	log(ctx, slog.LevelDebug, msg, a)
}

// Info prints an Info level log.
//
//nolint:contextcheck,nolintlint
func Info(msg string, a ...any) {
	log(context.Background(), slog.LevelInfo, msg, a)
}

// InfoContext prints an Info level log with context.
func InfoContext(ctx context.Context, msg string, a ...any) {
	log(ctx, slog.LevelInfo, msg, a)
}

// Warn prints a Warning level log.
//
//nolint:contextcheck,nolintlint
func Warn(msg string, a ...any) {
	log(context.Background(), slog.LevelWarn, msg, a)
}

// WarnContext prints a Warning level log with context.
func WarnContext(ctx context.Context, msg string, a ...any) {
	log(ctx, slog.LevelWarn, msg, a)
}

// Error prints an Error level log.
//
//nolint:contextcheck,nolintlint
func Error(msg string, a ...any) {
	log(context.Background(), slog.LevelError, msg, a)
}

// ErrorContext prints an Error level log with context.
func ErrorContext(ctx context.Context, msg string, a ...any) {
	log(ctx, slog.LevelError, msg, a)
}

// FatalContext prints an Error level log with context and then exits.
func FatalContext(ctx context.Context, msg string, a ...any) {
	log(ctx, slog.LevelError, msg, a)
	os.Exit(1)
}
