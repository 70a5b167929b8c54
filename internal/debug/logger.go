// Package debug holds the process-wide structured logger used by the
// synchronizer, the executor and the CLI.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  = slog.New(slog.DiscardHandler)
)

// Init turns logging on (text to stderr at debug level) or off.
func Init(enable bool) {
	if enable {
		SetOutput(os.Stderr, slog.LevelDebug)
		return
	}
	mu.Lock()
	defer mu.Unlock()
	enabled = false
	logger = slog.New(slog.DiscardHandler)
}

// SetOutput routes log records at or above level to w.
func SetOutput(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Enabled reports whether records are written anywhere.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, args ...any) { current().Debug(msg, args...) }

func Info(msg string, args ...any) { current().Info(msg, args...) }

func Warn(msg string, args ...any) { current().Warn(msg, args...) }

func Error(msg string, args ...any) { current().Error(msg, args...) }

// With returns the current logger annotated with args. The result does not
// follow later calls to Init or SetOutput.
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return current()
}
