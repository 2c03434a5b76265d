package errors

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogHandler is an ErrorHandler that writes errors to a zerolog logger.
type LogHandler struct {
	// Logger receives the entries. The zero value logs to stderr
	// through a console writer.
	Logger *zerolog.Logger

	// Verbose enables stack traces in the output.
	Verbose bool

	once sync.Once
}

func (h *LogHandler) logger() *zerolog.Logger {
	h.once.Do(func() {
		if h.Logger == nil {
			l := NewLogger(zerolog.InfoLevel, "console")
			h.Logger = &l
		}
	})
	return h.Logger
}

// HandleError logs a PluginError at error level.
func (h *LogHandler) HandleError(err *PluginError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().
		Str("op", err.Op).
		Str("kind", err.Kind.String())
	if err.Channel != "" {
		ev = ev.Str("channel", err.Channel)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Err(err.Err).Msg("oauth plugin error")
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().Interface("panic", err.Value)
	if err.Op != "" {
		ev = ev.Str("op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("oauth plugin panic")
}

// NewLogger builds a zerolog logger writing to stderr.
// Format is "console" or "json"; anything else falls back to json.
func NewLogger(level zerolog.Level, format string) zerolog.Logger {
	return newLogger(os.Stderr, level, format)
}

func newLogger(out io.Writer, level zerolog.Level, format string) zerolog.Logger {
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// ParseLevel maps trace, debug, info, warn and error to zerolog levels.
// Unknown or empty names yield info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
