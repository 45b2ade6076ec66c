package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is the severity of a log line.
type Level int8

const (
	// DebugLevel is for detailed diagnostics.
	DebugLevel Level = iota
	// InfoLevel is for general information.
	InfoLevel
	// WarnLevel is for recoverable problems.
	WarnLevel
	// ErrorLevel is for failures and isolated faults.
	ErrorLevel
)

// AllLevels lists every level from least to most severe.
var AllLevels = []Level{DebugLevel, InfoLevel, WarnLevel, ErrorLevel}

// String returns the level name.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error", "exception":
		return ErrorLevel, nil
	default:
		return DebugLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// ParseLevels parses a list of level names, skipping unknown ones.
// The returned error lists every name that could not be parsed.
func ParseLevels(names []string) ([]Level, error) {
	levels := make([]Level, 0, len(names))
	var bad []string
	for _, n := range names {
		l, err := ParseLevel(n)
		if err != nil {
			bad = append(bad, n)
			continue
		}
		levels = append(levels, l)
	}
	if len(bad) > 0 {
		return levels, fmt.Errorf("%w: %s", ErrUnknownLevel, strings.Join(bad, ", "))
	}
	return levels, nil
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func fromZapLevel(l zapcore.Level) Level {
	switch {
	case l <= zapcore.DebugLevel:
		return DebugLevel
	case l == zapcore.InfoLevel:
		return InfoLevel
	case l == zapcore.WarnLevel:
		return WarnLevel
	default:
		return ErrorLevel
	}
}
