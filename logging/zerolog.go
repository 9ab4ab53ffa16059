package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZerologAdapter implements Logger on top of a zerolog.Logger.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps an existing zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewZerologLogger builds a zerolog backed Logger writing to out. Pretty
// enables the human readable console writer.
func NewZerologLogger(out io.Writer, level LogLevel, pretty bool) *ZerologAdapter {
	if out == nil {
		out = os.Stdout
	}
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(out).Level(zerologLevel(level)).With().Timestamp().Logger()
	return NewZerologAdapter(l)
}

func zerologLevel(l LogLevel) zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message.
func (z *ZerologAdapter) Debug(msg string, args ...any) { z.logger.Debug().Fields(args).Msg(msg) }

// Info logs an informational message.
func (z *ZerologAdapter) Info(msg string, args ...any) { z.logger.Info().Fields(args).Msg(msg) }

// Warn logs a warning message.
func (z *ZerologAdapter) Warn(msg string, args ...any) { z.logger.Warn().Fields(args).Msg(msg) }

// Error logs an error message.
func (z *ZerologAdapter) Error(msg string, args ...any) { z.logger.Error().Fields(args).Msg(msg) }
