// Package logging holds the zerolog conventions shared by herald components.
package logging

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// Configure installs logger as the global logger with ContextHook attached.
func Configure(logger zerolog.Logger) {
	log.Logger = logger.Hook(ContextHook{})
}

// Redirect sends global log output to w and returns a function restoring
// the previous logger. Component loggers created before the call keep
// their writer.
func Redirect(w io.Writer) func() {
	prev := log.Logger
	log.Logger = prev.Output(w)
	return func() { log.Logger = prev }
}
