package observability

import (
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Log output formats accepted by NewZerolog.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog logger.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NewZerologLogger(logger zerolog.Logger) Logger {
	return &zerologLogger{logger: logger}
}

// NewZerolog builds a timestamped zerolog logger writing to w.
// level is any zerolog level name ("debug", "info", ...); format is
// FormatJSON or FormatConsole.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NewZerolog(w io.Writer, level, format string) (Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch format {
	case "", FormatJSON:
	case FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return nil, errors.Newf("invalid log format %q (want %s or %s)", format, FormatJSON, FormatConsole)
	}

	return NewZerologLogger(zerolog.New(w).Level(lvl).With().Timestamp().Logger()), nil
}

func (l *zerologLogger) Debug(msg string, fields ...Field) {
	emit(l.logger.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...Field) {
	emit(l.logger.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...Field) {
	emit(l.logger.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...Field) {
	emit(l.logger.Error(), msg, fields)
}

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l *zerologLogger) With(fields ...Field) Logger {
	ctx := l.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}

	return &zerologLogger{logger: ctx.Logger()}
}

// emit attaches fields with their native zerolog encoders and sends the event.
// A nil event means the level is disabled.
func emit(event *zerolog.Event, msg string, fields []Field) {
	if event == nil {
		return
	}

	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event = event.Str(f.Key, v)
		case int:
			event = event.Int(f.Key, v)
		case int64:
			event = event.Int64(f.Key, v)
		case bool:
			event = event.Bool(f.Key, v)
		case time.Duration:
			event = event.Dur(f.Key, v)
		case error:
			event = event.AnErr(f.Key, v)
		default:
			event = event.Interface(f.Key, v)
		}
	}

	event.Msg(msg)
}
