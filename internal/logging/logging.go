package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Log levels, from least to most verbose.
const (
	LevelError = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

type Config struct {
	Level int
}

// Logger is a thin wrapper around zerolog that the rest of the codebase logs
// through. Stages receive a *Logger explicitly; there is no ambient logger.
type Logger struct {
	zl zerolog.Logger
}

func NewLogger(c Config) *Logger {
	return NewLoggerWithWriter(c, zerolog.ConsoleWriter{Out: os.Stderr})
}

func NewLoggerWithWriter(c Config, w io.Writer) *Logger {
	zl := zerolog.New(w).Level(zerologLevel(c.Level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

// WithField returns a copy of the logger that attaches key/value to every
// record it emits.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

func Discard() *Logger {
	return &Logger{zl: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

func zerologLevel(level int) zerolog.Level {
	switch {
	case level <= LevelError:
		return zerolog.ErrorLevel
	case level == LevelWarn:
		return zerolog.WarnLevel
	case level == LevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
