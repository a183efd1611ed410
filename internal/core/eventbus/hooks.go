package eventbus

import "sync"

// hooks holds the lifecycle hook state for the EventBus. Hooks observe the
// bus for diagnostics and never affect delivery.
type hooks struct {
	mu          sync.RWMutex
	onPublish   []func(Event, any)
	onDrop      []func(Event, any)
	onSubscribe []func(Event)
	onPanic     []func(Event, any, any)
}

// OnPublish registers a hook that fires after an event is enqueued.
func (bus *EventBus) OnPublish(fn func(Event, any)) {
	addHook(&bus.hooks, &bus.hooks.onPublish, fn)
}

// OnDrop registers a hook that fires when an event is dropped because the
// dispatch buffer is full.
func (bus *EventBus) OnDrop(fn func(Event, any)) {
	addHook(&bus.hooks, &bus.hooks.onDrop, fn)
}

// OnSubscribe registers a hook that fires after a subscriber is registered.
func (bus *EventBus) OnSubscribe(fn func(Event)) {
	addHook(&bus.hooks, &bus.hooks.onSubscribe, fn)
}

// OnPanic registers a hook that fires when a subscriber panics. Panics in
// the hook itself are swallowed.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) {
	addHook(&bus.hooks, &bus.hooks.onPanic, fn)
}

func addHook[F any](h *hooks, list *[]F, fn F) {
	h.mu.Lock()
	*list = append(*list, fn)
	h.mu.Unlock()
}

// snapshot copies a hook list so hooks run without holding the lock.
func snapshot[F any](h *hooks, list *[]F) []F {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]F(nil), *list...)
}

// send enqueues an event without blocking the publisher.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		for _, fn := range snapshot(&bus.hooks, &bus.hooks.onPublish) {
			fn(event, payload)
		}
	default:
		for _, fn := range snapshot(&bus.hooks, &bus.hooks.onDrop) {
			fn(event, payload)
		}
	}
}

func (bus *EventBus) runOnSubscribe(event Event) {
	for _, fn := range snapshot(&bus.hooks, &bus.hooks.onSubscribe) {
		fn(event)
	}
}

func (bus *EventBus) runOnPanic(event Event, payload any, recovered any) {
	for _, fn := range snapshot(&bus.hooks, &bus.hooks.onPanic) {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(event, payload, recovered)
		}()
	}
}
