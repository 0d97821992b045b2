package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"marketpulse/src/models"

	"github.com/rs/zerolog"
)

// -----------------------------------------------------------------------------

// Logger wraps a named zerolog.Logger behind the printf-style call
// convention the rest of this codebase uses (Debug/Info/Warning/Error with
// format+args, Critical additionally terminating the process).
type Logger struct {
	name string
	zl   zerolog.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. config carries the ambient
// logging options (level/format); name identifies the component in every
// emitted record.
func NewLogger(config *models.AppConfig, name string) *Logger {
	level, err := zerolog.ParseLevel(config.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	// format selects human-readable console output vs. raw JSON records;
	// anything other than "console" falls back to JSON, matching the
	// grounding reference's default.
	var writer io.Writer
	if config.Logging.Format == "console" {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		writer = os.Stdout
	}
	zl := zerolog.New(writer).With().Timestamp().Str("component", name).Logger().Level(level)

	return &Logger{name: name, zl: zl}
}

// -----------------------------------------------------------------------------

// Debug logs debug-level messages.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Warning logs warn-level messages.
func (l *Logger) Warning(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Info logs info-level messages.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Error logs error-level messages.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Critical logs an error-level message and exits the process. Reserved for
// startup failures the service cannot run without; the ingest path never
// calls this, per the best-effort contract.
func (l *Logger) Critical(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
	os.Exit(1)
}
