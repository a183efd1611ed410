package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/core/notify"
	"github.com/rs/zerolog"
)

// DefaultClickURL is opened when a clicked notification carries no URL.
const DefaultClickURL = "/"

// Click is a user interaction with a native notification.
type Click struct {
	Tag    string         `json:"tag"`
	Action string         `json:"action"`
	Data   map[string]any `json:"data,omitempty"`
}

// URL returns the click target, or DefaultClickURL.
func (c Click) URL() string {
	if u, ok := c.Data["url"].(string); ok && u != "" {
		return u
	}
	return DefaultClickURL
}

// ClickOutcome describes what HandleClick did.
type ClickOutcome string

const (
	ClickFocused   ClickOutcome = "focused"
	ClickOpened    ClickOutcome = "opened"
	ClickDismissed ClickOutcome = "dismissed"
)

// WindowClients controls the application views the host has open.
type WindowClients interface {
	// Focus brings an open view showing url to the front. It reports false
	// when no such view exists.
	Focus(ctx context.Context, url string) (bool, error)
	// Open opens a new view at url.
	Open(ctx context.Context, url string) error
}

// Registration describes where the background handler is installed.
type Registration struct {
	ScriptPath string `json:"scriptPath" yaml:"script_path"`
	Scope      string `json:"scope" yaml:"scope"`
}

// DefaultRegistration is the statically known handler location.
func DefaultRegistration() Registration {
	return Registration{ScriptPath: "/firebase-messaging-sw.js", Scope: "/"}
}

// Background handles messages while no interactive session is active. It
// holds no foreground state and never touches the notification store.
type Background struct {
	notifier Notifier
	clients  WindowClients
	now      func() time.Time
	newID    notify.IDFunc
	logger   zerolog.Logger
}

// NewBackground creates a background handler.
func NewBackground(notifier Notifier, clients WindowClients) *Background {
	return &Background{
		notifier: notifier,
		clients:  clients,
		now:      time.Now,
		newID:    notify.LocalID,
		logger:   logging.Component("background"),
	}
}

// HandlePush normalizes p and requests a native notification.
func (b *Background) HandlePush(ctx context.Context, p notify.Payload) (DisplayRequest, error) {
	r := notify.NormalizeWith(p, b.now(), b.newID)
	req := DisplayRequestFor(r)
	if err := b.notifier.Display(ctx, req); err != nil {
		return req, fmt.Errorf("display notification: %w", err)
	}
	b.logger.Debug().Str("tag", req.Tag).Msg("background notification shown")
	return req, nil
}

// HandleClick closes the clicked notification and, for the view action or a
// click on the notification body, focuses or opens a view at its URL. Other
// actions are logged and dismissed.
func (b *Background) HandleClick(ctx context.Context, c Click) (ClickOutcome, error) {
	if err := b.notifier.Close(ctx, c.Tag); err != nil {
		b.logger.Warn().Err(err).Str("tag", c.Tag).Msg("closing notification failed")
	}

	if c.Action != "" && c.Action != notify.ActionView {
		b.logger.Info().Str("action", c.Action).Str("tag", c.Tag).Msg("notification action dismissed")
		return ClickDismissed, nil
	}

	url := c.URL()
	focused, err := b.clients.Focus(ctx, url)
	if err != nil {
		b.logger.Warn().Err(err).Str("url", url).Msg("focusing view failed")
	}
	if focused {
		return ClickFocused, nil
	}

	if err := b.clients.Open(ctx, url); err != nil {
		return "", fmt.Errorf("open %s: %w", url, err)
	}
	return ClickOpened, nil
}
