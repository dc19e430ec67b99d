// Package logging provides structured logging for fricu-server using
// zerolog. It mirrors a global-logger-plus-component-child-logger shape:
// Init sets up the global logger once, and WithComponent/WithWorker hand out
// scoped child loggers to the bootstrap, supervisor, and each worker.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level is a logging verbosity threshold.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config controls how the global logger is constructed.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Logger is the process-wide logger, set by Init.
var Logger zerolog.Logger

// Init builds the global logger from cfg. Call once at process startup,
// before any worker or the bootstrap runs.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
		return
	}
	Logger = zerolog.New(zerolog.ConsoleWriter{Out: output}).With().Timestamp().Logger()
}

// WithComponent returns a child logger tagged with a component name, for
// the bootstrap and supervisor.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithWorker returns a child logger tagged with a worker id, for per-worker
// error logging. Never called from the per-request path.
func WithWorker(id int) zerolog.Logger {
	return Logger.With().Str("component", "worker").Int("worker_id", id).Logger()
}
