package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

var global zerolog.Logger

func init() {
	global = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// Setup configures the global logger level and optional output file.
func Setup(level, file string) error {
	if len(level) > 0 {
		lv, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return errors.Wrap(err, "")
		}
		zerolog.SetGlobalLevel(lv)
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if len(file) > 0 {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return errors.Wrap(err, "")
		}
		out = f
	}

	global = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// GetSlogLogger returns an slog facade over the global logger,
// for collaborators that expect *slog.Logger.
func GetSlogLogger() *slog.Logger {
	handler := slogzerolog.Option{Level: slog.LevelDebug, Logger: &global}.NewZerologHandler()
	return slog.New(handler)
}

// Logger is a named logger bound to a function or component.
type Logger struct {
	zl zerolog.Logger
}

// WithFunc .
func WithFunc(fn string) *Logger {
	return &Logger{zl: global.With().Str("func", fn).Logger()}
}

// Debugf .
func (l *Logger) Debugf(_ context.Context, format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// Infof .
func (l *Logger) Infof(_ context.Context, format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

// Warnf .
func (l *Logger) Warnf(_ context.Context, format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

// Errorf .
func (l *Logger) Errorf(_ context.Context, err error, format string, args ...any) {
	l.zl.Error().Err(err).Msgf(format, args...)
}
