// Package logging configures the zerolog logger shared by all components.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a config level name onto a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup builds a logger writing colored console output to stderr and, when
// extra is not nil, plain console output to extra (typically a log file).
func Setup(level string, extra io.Writer) zerolog.Logger {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		},
	}
	if extra != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        extra,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(level)).
		With().Timestamp().Logger()
}

// OpenFile opens path for appending log output. An empty path returns nil.
func OpenFile(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Component returns a child logger tagged with the component name
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
