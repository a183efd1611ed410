package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs bus activity: published events at debug level,
// dropped events as warnings and subscriber panics as errors. Status lines
// are echoed with their own level so headless commands still surface them.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, _ any) {
		logger.Debug().Str("event", string(event)).Msg("event published")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().Str("event", string(event)).Msg("event dropped: buffer full")
	})

	bus.OnSubscribe(func(event Event) {
		logger.Trace().Str("event", string(event)).Msg("subscriber added")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})

	bus.SubscribeStatusReported(func(p StatusReportedPayload) {
		logger.WithLevel(statusLogLevel(p.Level)).Msg(p.Message)
	})
}

func statusLogLevel(level StatusLevel) zerolog.Level {
	switch level {
	case StatusError:
		return zerolog.ErrorLevel
	case StatusWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
