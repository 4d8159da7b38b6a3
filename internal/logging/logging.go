// Package logging sets up the application's structured and human-readable loggers.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	structuredLogger    *slog.Logger
	humanReadableLogger *slog.Logger
	initOnce            sync.Once
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Init initializes the logging system with structured and human-readable loggers.
// JSON output goes to stdout for log collection, text output to stderr for
// operators watching a batch run.
func Init(level slog.Level) {
	initOnce.Do(func() {
		configure(level)
	})
}

func configure(level slog.Level) {
	structuredLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}))

	humanReadableLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}))

	slog.SetDefault(structuredLogger)
}

// SetLevel re-initializes both loggers with the new minimum level.
func SetLevel(level slog.Level) {
	configure(level)
}

// Structured returns the JSON logger for machine consumption.
func Structured() *slog.Logger {
	if structuredLogger == nil {
		Init(slog.LevelInfo)
	}
	return structuredLogger
}

// Human returns the text logger for operator-facing output.
func Human() *slog.Logger {
	if humanReadableLogger == nil {
		Init(slog.LevelInfo)
	}
	return humanReadableLogger
}

// ForService returns a structured logger scoped to a named subsystem.
func ForService(service string) *slog.Logger {
	return Structured().With("service", service)
}

// ParseLevel converts a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
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
