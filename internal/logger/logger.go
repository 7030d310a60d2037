// Package logger provides the structured slog.Logger every replicore
// component logs through, writing to stdout and, optionally, a log file.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Log is the package-level logger every component uses by default. It is
// replaced wholesale by Init, not mutated in place.
var Log *slog.Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init configures Log at the given level ("debug", "info", "warn", "error")
// writing to stdout and, if logFile is non-empty, also appending to that
// file. Timestamps are shortened to HH:MM:SS since replicore's own logs
// never need to be correlated across days within one process lifetime.
func Init(level, logFile string) error {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	writer := io.Writer(os.Stdout)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("logger: open log file: %w", err)
		}
		writer = io.MultiWriter(os.Stdout, f)
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format("15:04:05"))
			}
			return a
		},
	})

	Log = slog.New(handler)
	slog.SetDefault(Log)
	return nil
}

func Debug(msg string, args ...any) { Log.Debug(msg, args...) }
func Info(msg string, args ...any)  { Log.Info(msg, args...) }
func Warn(msg string, args ...any)  { Log.Warn(msg, args...) }
func Error(msg string, args ...any) { Log.Error(msg, args...) }
