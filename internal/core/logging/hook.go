package logging

import "github.com/rs/zerolog"

// contextFields are copied from the event context onto the event, in order.
var contextFields = []contextKey{userIDKey, deviceIDKey}

// ContextHook tags events logged with .Ctx(ctx) with the identity values
// stored by WithUserID and WithDeviceID. Empty values are omitted.
type ContextHook struct{}

// Run implements zerolog.Hook.
func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}
	for _, key := range contextFields {
		if v := lookup(ctx, key); v != "" {
			e.Str(string(key), v)
		}
	}
}
