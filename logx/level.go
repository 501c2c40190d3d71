package logx

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity of a log record, on the slog scale.
type Level = slog.Level

// Supported levels, ordered. Critical sits above slog's error level so
// that captured task failures always outrank application errors.
const (
	LevelDebug    Level = slog.LevelDebug
	LevelInfo     Level = slog.LevelInfo
	LevelWarn     Level = slog.LevelWarn
	LevelCritical Level = slog.Level(12)
)

// ParseLevel converts a configuration string into a Level.
// It accepts the names used in config files, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "critical":
		return LevelCritical, nil
	default:
		return LevelInfo, fmt.Errorf("logx: unknown log level %q", s)
	}
}

// LevelName returns the canonical name for a level.
func LevelName(l Level) string {
	switch {
	case l >= LevelCritical:
		return "CRITICAL"
	case l >= LevelWarn:
		return "WARNING"
	case l >= LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// replaceLevel rewrites the level attribute so that sinks render the
// custom CRITICAL level instead of slog's "ERROR+4".
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey && len(groups) == 0 {
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(LevelName(lvl))
		}
	}
	return a
}
