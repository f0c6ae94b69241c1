package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

//go:generate mockgen -destination=../../internal/domain/mocks/mock_logger.go -package=mocks github.com/Notifuse/mailblocks/pkg/logger Logger

type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

type zerologLogger struct {
	logger zerolog.Logger
}

// NewLogger writes JSON lines to stdout and follows the global zerolog level
func NewLogger() Logger {
	return newLogger(os.Stdout, zerolog.TraceLevel)
}

// NewLoggerWithLevel writes JSON lines to stdout, dropping entries below level.
// Unknown levels fall back to info.
func NewLoggerWithLevel(level string) Logger {
	return newLogger(os.Stdout, ParseLevel(level))
}

// NewConsoleLogger writes human readable lines to stderr, used by the CLI
func NewConsoleLogger(level string) Logger {
	return newLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, ParseLevel(level))
}

func newLogger(w io.Writer, level zerolog.Level) Logger {
	return &zerologLogger{
		logger: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// ParseLevel maps a level name to a zerolog level
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func (l *zerologLogger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

func (l *zerologLogger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *zerologLogger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

func (l *zerologLogger) Error(msg string) {
	l.logger.Error().Msg(msg)
}

func (l *zerologLogger) Fatal(msg string) {
	l.logger.Fatal().Msg(msg)
}

func (l *zerologLogger) WithField(key string, value interface{}) Logger {
	return &zerologLogger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// WithFields returns a child logger; the receiver keeps its own fields
func (l *zerologLogger) WithFields(fields map[string]interface{}) Logger {
	return &zerologLogger{
		logger: l.logger.With().Fields(fields).Logger(),
	}
}
