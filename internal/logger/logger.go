// Package logger is a thin structured-logging facade over zerolog. Call
// sites attach context as a Fields map rather than touching zerolog
// directly, so the backend stays swappable.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Fields map[string]any

var log = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Setup configures the global level and output format. pretty switches to
// the human-readable console writer for interactive use.
func Setup(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := zerolog.New(os.Stderr)
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log = out.Level(lvl).With().Timestamp().Logger()
}

func Debug(message string, fields Fields) {
	log.Debug().Fields(map[string]any(fields)).Msg(message)
}

func Info(message string, fields Fields) {
	log.Info().Fields(map[string]any(fields)).Msg(message)
}

func Warn(message string, fields Fields) {
	log.Warn().Fields(map[string]any(fields)).Msg(message)
}

func Error(message string, err error, fields Fields) {
	log.Error().Err(err).Fields(map[string]any(fields)).Msg(message)
}
