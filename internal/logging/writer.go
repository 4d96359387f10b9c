package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/myrjola/repcoach/internal/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogFileMegabytes = 50
	maxLogFileBackups   = 5
	maxLogFileAgeDays   = 28
)

var ErrUnknownLevel = errors.NewSentinel("unknown log level")

// NewWriter returns the log sink. An empty path logs to stdout, otherwise the log is written to path and rotated by
// size.
func NewWriter(path string) io.Writer {
	if path == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogFileMegabytes,
		MaxAge:     maxLogFileAgeDays,
		MaxBackups: maxLogFileBackups,
		LocalTime:  false,
		Compress:   true,
	}
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Wrap(ErrUnknownLevel, "parse level", slog.String("level", s))
	}
}

// NewLogger builds the application logger writing JSON to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewContextHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: nil,
	})))
}
