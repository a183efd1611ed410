package intake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/permission"
	"github.com/rs/zerolog"
)

// MessageSource delivers raw push messages addressed to a delivery token.
// The returned channel is closed when the subscription ends.
type MessageSource interface {
	Subscribe(ctx context.Context, token string) (<-chan []byte, error)
}

// PermissionReader reports the current permission state.
type PermissionReader interface {
	State(ctx context.Context) permission.State
}

// Foreground handles messages while the interactive session is active.
// Messages are added to the store and, when permission is granted, shown
// as native notifications.
type Foreground struct {
	store   *notify.Store
	perm    PermissionReader
	display Displayer
	mutes   []string
	now     func() time.Time
	newID   notify.IDFunc
	logger  zerolog.Logger

	mu       sync.Mutex
	handlers map[int]func(notify.Record, bool)
	nextID   int
}

// ForegroundOption configures a Foreground.
type ForegroundOption func(*Foreground)

// WithMutePatterns suppresses native display for records whose URL matches
// any of the doublestar patterns. Muted records are still stored.
func WithMutePatterns(patterns []string) ForegroundOption {
	return func(f *Foreground) {
		f.mutes = append(f.mutes, patterns...)
	}
}

// WithForegroundClock overrides the time source and id generator used
// during normalization.
func WithForegroundClock(now func() time.Time, newID notify.IDFunc) ForegroundOption {
	return func(f *Foreground) {
		f.now = now
		f.newID = newID
	}
}

// NewForeground creates a foreground intake.
func NewForeground(store *notify.Store, perm PermissionReader, display Displayer, opts ...ForegroundOption) *Foreground {
	f := &Foreground{
		store:    store,
		perm:     perm,
		display:  display,
		now:      time.Now,
		newID:    notify.LocalID,
		logger:   logging.Component("foreground"),
		handlers: make(map[int]func(notify.Record, bool)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OnForegroundMessage registers a handler called with every record taken in.
// The returned function removes the handler.
func (f *Foreground) OnForegroundMessage(handler func(notify.Record)) func() {
	return f.OnDelivery(func(r notify.Record, _ bool) { handler(r) })
}

// OnDelivery is OnForegroundMessage with the display outcome: displayed is
// true when a native notification was requested.
func (f *Foreground) OnDelivery(handler func(r notify.Record, displayed bool)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.handlers[id] = handler
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.handlers, id)
			f.mu.Unlock()
		})
	}
}

// Deliver takes in one payload. It returns the stored record and whether a
// native notification was requested.
func (f *Foreground) Deliver(ctx context.Context, p notify.Payload) (notify.Record, bool) {
	r := notify.NormalizeWith(p, f.now(), f.newID)
	f.store.Add(r)

	displayed := false
	switch {
	case f.perm.State(ctx) != permission.Granted:
	case f.muted(r.URL):
		f.logger.Debug().Str("id", r.ID).Str("url", r.URL).Msg("display muted")
	default:
		if err := f.display.Display(ctx, DisplayRequestFor(r)); err != nil {
			f.logger.Warn().Err(err).Str("id", r.ID).Msg("native display failed")
		} else {
			displayed = true
		}
	}

	f.mu.Lock()
	handlers := make([]func(notify.Record, bool), 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(r, displayed)
	}

	return r, displayed
}

// Listen subscribes to src for token and delivers every message until ctx is
// cancelled or the source closes.
func (f *Foreground) Listen(ctx context.Context, src MessageSource, token string) error {
	msgs, err := src.Subscribe(ctx, token)
	if err != nil {
		return fmt.Errorf("subscribe to messages: %w", err)
	}

	f.logger.Info().Msg("listening for messages")
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			f.Deliver(ctx, notify.ParsePayload(raw))
		}
	}
}

func (f *Foreground) muted(url string) bool {
	if url == "" {
		return false
	}
	for _, pattern := range f.mutes {
		ok, err := doublestar.Match(pattern, url)
		if err != nil {
			f.logger.Warn().Err(err).Str("pattern", pattern).Msg("invalid mute pattern")
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
