// Package herald wires the permission gate, token provider, registrar and
// message intake into the application that commands and the TUI consume.
package herald

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/herald/internal/core/config"
	"github.com/colonyops/herald/internal/core/eventbus"
	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/kv"
	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/permission"
	"github.com/colonyops/herald/internal/core/push"
)

// ErrNoBackend is returned by operations that need the device registry when
// none is configured.
var ErrNoBackend = errors.New("no backend configured")

// Deps are the adapters the App is built from.
type Deps struct {
	Config  *config.Config
	Storage kv.KV
	Host    permission.Host
	Tokens  push.TokenSource
	// Backend may be nil; registration is then skipped.
	Backend push.Backend
	History HistoryClient
	Source  intake.MessageSource
	Display intake.Displayer
	Bus     *eventbus.EventBus
	UserID  string
	Version string
	Now     func() time.Time
}

// App is the central entry point for herald operations.
type App struct {
	Config        *config.Config
	Bus           *eventbus.EventBus
	Gate          *permission.Gate
	Tokens        *push.TokenProvider
	Registrar     *push.Registrar
	States        *push.StateStore
	Notifications *notify.Store
	Foreground    *intake.Foreground
	History       *HistoryService

	source  intake.MessageSource
	backend push.Backend
	userID  string
	version string
	logger  zerolog.Logger

	started atomic.Bool
}

// New constructs an App from explicit dependencies.
func New(d Deps) (*App, error) {
	if d.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if d.Storage == nil || d.Host == nil || d.Tokens == nil {
		return nil, fmt.Errorf("storage, permission host and token source are required")
	}
	if d.Bus == nil {
		d.Bus = eventbus.New(0)
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	gate := permission.NewGate(d.Host)
	states := push.NewStateStore(d.Storage)
	tokens := push.NewTokenProvider(gate, d.Tokens, states, d.Config.Push.TokenTTL)

	var registrar *push.Registrar
	if d.Backend != nil {
		registrar = push.NewRegistrar(tokens, d.Backend, states, push.WithClock(d.Now))
	}

	store := notify.NewStore(notify.WithMaxItems(d.Config.Notifications.MaxItems))

	display := d.Display
	if display == nil {
		display = discardDisplay{}
	}
	fg := intake.NewForeground(store, gate, display,
		intake.WithMutePatterns(d.Config.Notifications.Mute),
		intake.WithForegroundClock(d.Now, notify.LocalID),
	)

	a := &App{
		Config:        d.Config,
		Bus:           d.Bus,
		Gate:          gate,
		Tokens:        tokens,
		Registrar:     registrar,
		States:        states,
		Notifications: store,
		Foreground:    fg,
		source:        d.Source,
		backend:       d.Backend,
		userID:        d.UserID,
		version:       d.Version,
		logger:        logging.Component("app"),
	}
	if d.History != nil {
		a.History = NewHistoryService(d.History, store, d.UserID)
	}
	return a, nil
}

// UserID returns the user the device registers for.
func (a *App) UserID() string {
	return a.userID
}

// Start bridges component hooks onto the event bus and reacts to
// permission changes. It observes the current permission once, so a granted
// state at startup triggers token acquisition and registration. The
// returned function detaches every hook. Start while already started is a
// no-op.
func (a *App) Start(ctx context.Context) func() {
	if !a.started.CompareAndSwap(false, true) {
		return func() {}
	}

	// bus subscriptions cannot be removed; active silences this one after detach
	var active atomic.Bool
	active.Store(true)

	stopWatch := a.Gate.Watch(func(prev, next permission.State) {
		a.Bus.PublishPermissionChanged(eventbus.PermissionChangedPayload{Old: prev, New: next})
	})

	stopAcquire := a.Tokens.OnAcquire(func(stale bool) {
		a.Bus.PublishTokenAcquired(eventbus.TokenAcquiredPayload{Stale: stale})
	})

	stopDelivery := a.Foreground.OnDelivery(func(r notify.Record, displayed bool) {
		a.Bus.PublishNotificationReceived(eventbus.NotificationReceivedPayload{Record: r, Displayed: displayed})
	})

	a.Bus.SubscribePermissionChanged(func(p eventbus.PermissionChangedPayload) {
		if !active.Load() || p.New != permission.Granted {
			return
		}
		go a.Sync(ctx)
	})

	a.Gate.State(ctx)

	var once sync.Once
	return func() {
		once.Do(func() {
			active.Store(false)
			stopWatch()
			stopAcquire()
			stopDelivery()
			a.started.Store(false)
		})
	}
}

// RequestPermission asks the host for permission.
func (a *App) RequestPermission(ctx context.Context) permission.State {
	return a.Gate.Request(ctx)
}

// Descriptor describes this installation.
func (a *App) Descriptor(ctx context.Context) (push.Descriptor, error) {
	id, err := a.States.DeviceID(ctx)
	if err != nil {
		return push.Descriptor{}, err
	}
	return push.DescribeDevice(push.UserAgent(a.version), a.version, id), nil
}

// Sync registers the device when permission is granted and the cooldown
// has elapsed. Outcomes are published on the bus.
func (a *App) Sync(ctx context.Context) push.Result {
	return a.register(ctx, false)
}

// ForceRegister registers the device ignoring the cooldown.
func (a *App) ForceRegister(ctx context.Context) push.Result {
	return a.register(ctx, true)
}

func (a *App) register(ctx context.Context, force bool) push.Result {
	if a.Registrar == nil {
		return push.Result{Outcome: push.Skipped}
	}
	if st := a.Gate.State(ctx); st != permission.Granted {
		return push.Result{Outcome: push.Skipped}
	}

	d, err := a.Descriptor(ctx)
	if err != nil {
		res := push.Result{Outcome: push.Failed, Err: fmt.Errorf("%w: %w", push.ErrRegistrationFailed, err)}
		a.publishResult(ctx, d, res)
		return res
	}

	var res push.Result
	if force {
		res = a.Registrar.Register(ctx, a.userID, d)
	} else {
		res = a.Registrar.RegisterIfDue(ctx, a.userID, d)
	}
	a.publishResult(ctx, d, res)
	return res
}

func (a *App) publishResult(ctx context.Context, d push.Descriptor, res push.Result) {
	switch res.Outcome {
	case push.Registered:
		st, err := a.States.Load(ctx)
		if err != nil {
			a.logger.Debug().Err(err).Msg("reload registration state")
		}
		a.Bus.PublishDeviceRegistered(eventbus.DeviceRegisteredPayload{
			UserID:       a.userID,
			DeviceID:     d.DeviceID,
			RegisteredAt: st.LastRegisteredAt,
		})
	case push.Failed:
		a.Bus.PublishDeviceRegistrationFailed(eventbus.DeviceRegistrationFailedPayload{
			UserID: a.userID,
			Err:    res.Err,
		})
	}
}

// Unregister removes the device from the registry and forgets its token.
func (a *App) Unregister(ctx context.Context) error {
	if a.Registrar == nil {
		return ErrNoBackend
	}
	if err := a.Registrar.Unregister(ctx, a.userID); err != nil {
		return err
	}
	return a.Tokens.Forget(ctx)
}

// Listen delivers foreground messages until ctx is cancelled. It needs a
// delivery token, so permission must be granted.
func (a *App) Listen(ctx context.Context) error {
	if a.source == nil {
		return fmt.Errorf("no message source configured")
	}
	if err := a.Gate.State(ctx).Err(); err != nil {
		return err
	}
	tok, ok := a.Tokens.Token(ctx)
	if !ok {
		return push.ErrTokenUnavailable
	}
	return a.Foreground.Listen(ctx, a.source, tok)
}

type discardDisplay struct{}

func (discardDisplay) Display(context.Context, intake.DisplayRequest) error { return nil }
