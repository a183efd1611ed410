package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/herald/internal/backend"
	"github.com/colonyops/herald/internal/core/config"
	"github.com/colonyops/herald/internal/core/doctor"
	"github.com/colonyops/herald/internal/core/eventbus"
	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/core/push"
	"github.com/colonyops/herald/internal/data/stores"
	"github.com/colonyops/herald/internal/delivery"
	"github.com/colonyops/herald/internal/herald"
	"github.com/colonyops/herald/internal/platform/terminal"
	"github.com/colonyops/herald/internal/updatecheck"
)

// Runtime holds the resources opened by the root Before hook. Commands hold
// a pointer to it and build the App they need on demand.
type Runtime struct {
	Config  *config.Config
	Storage stores.Backend
	Version string
	// Updates looks up newer releases. Nil disables the check.
	Updates *updatecheck.Checker
}

// Close releases the storage backend.
func (rt *Runtime) Close() error {
	if rt.Storage == nil {
		return nil
	}
	return rt.Storage.Close()
}

// OpenStorage opens the configured storage backend.
func OpenStorage(ctx context.Context, cfg *config.Config) (stores.Backend, error) {
	return stores.Open(ctx, stores.Options{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.StatePath(),
		Watch:       cfg.Storage.Watch,
		RedisURL:    cfg.Storage.RedisURL,
		RedisPrefix: cfg.Storage.RedisPrefix,
	}, logging.Component("storage"))
}

// updates returns the release checker as an interface, nil when disabled.
func (rt *Runtime) updates() doctor.UpdateChecker {
	if rt.Updates == nil {
		return nil
	}
	return rt.Updates
}

// AppOptions select the adapters that differ between commands.
type AppOptions struct {
	// Prompter asks for permission. Nil uses the inline huh confirm.
	Prompter terminal.Prompter
	Display  intake.Displayer
	Source   intake.MessageSource
	// Tokens overrides the configured delivery service.
	Tokens push.TokenSource
}

// Host returns the terminal permission host backed by the runtime storage.
func (rt *Runtime) Host(prompter terminal.Prompter) *terminal.Host {
	if prompter == nil {
		prompter = terminal.NewHuhPrompter()
	}
	return terminal.NewHost(rt.Storage, prompter, rt.Config.Notifications.Enabled)
}

// Backend returns the backend client, or nil when none is configured.
func (rt *Runtime) Backend() (*backend.Client, error) {
	cfg := rt.Config.Backend
	if cfg.URL == "" {
		return nil, nil
	}
	return backend.New(cfg.URL, cfg.AuthToken, backend.WithTimeout(cfg.Timeout))
}

// ResolveUserID picks the user the device registers for: the flag, then
// backend.user_id, then the auth token claims.
func ResolveUserID(flag string, cfg config.BackendConfig) (string, error) {
	switch {
	case flag != "":
		return flag, nil
	case cfg.UserID != "":
		return cfg.UserID, nil
	case cfg.AuthToken != "":
		return backend.UserIDFromToken(cfg.AuthToken)
	default:
		return "", backend.ErrNoUserID
	}
}

// App builds the application and starts its event bus. The bus stops when
// ctx is cancelled.
func (rt *Runtime) App(ctx context.Context, flags *Flags, opts AppOptions) (*herald.App, error) {
	cfg := rt.Config

	client, err := rt.Backend()
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}

	var userID string
	if client != nil {
		userID, err = ResolveUserID(flags.UserID, cfg.Backend)
		if err != nil {
			return nil, fmt.Errorf("resolve user id: %w (set backend.user_id or --user-id)", err)
		}
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = tokenSource(cfg)
	}

	bus := eventbus.New(0)
	eventbus.RegisterDebugLogger(bus, logging.Component("bus"))
	eventbus.NewStatusRouter(bus).Register()
	go bus.Start(ctx)

	deps := herald.Deps{
		Config:  cfg,
		Storage: rt.Storage,
		Host:    rt.Host(opts.Prompter),
		Tokens:  tokens,
		Source:  opts.Source,
		Display: opts.Display,
		Bus:     bus,
		UserID:  userID,
		Version: rt.Version,
	}
	if client != nil {
		deps.Backend = client
		deps.History = client
	}

	app, err := herald.New(deps)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("user_id", userID).
		Bool("backend", client != nil).
		Str("storage", cfg.Storage.Driver).
		Msg("app ready")

	return app, nil
}

func tokenSource(cfg *config.Config) push.TokenSource {
	if cfg.Delivery.URL == "" {
		return delivery.Unconfigured{}
	}
	return delivery.NewSource(delivery.Config{
		URL:      cfg.Delivery.URL,
		AppID:    cfg.Delivery.AppID,
		VAPIDKey: cfg.Delivery.VAPIDKey,
		Timeout:  cfg.Delivery.Timeout,
	})
}

// requireBackend fails commands that need the device registry.
func requireBackend(app *herald.App) error {
	if app.Registrar == nil {
		return fmt.Errorf("%w: set backend.url", herald.ErrNoBackend)
	}
	return nil
}
