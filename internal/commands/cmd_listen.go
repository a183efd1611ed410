package commands

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/herald/internal/core/eventbus"
	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/permission"
	"github.com/colonyops/herald/internal/delivery"
	"github.com/colonyops/herald/internal/fcm"
	"github.com/colonyops/herald/internal/herald"
	"github.com/colonyops/herald/internal/platform/terminal"
	"github.com/colonyops/herald/internal/transport/chansource"
	"github.com/colonyops/herald/internal/transport/natssource"
	"github.com/colonyops/herald/internal/tui"
	"github.com/colonyops/herald/pkg/executil"
	"github.com/colonyops/herald/pkg/logutils"
	"github.com/colonyops/herald/pkg/profiler"
)

const demoInterval = 6 * time.Second

type ListenCmd struct {
	flags *Flags
	rt    *Runtime

	demo bool
}

// NewListenCmd creates a new listen command.
func NewListenCmd(flags *Flags, rt *Runtime) *ListenCmd {
	return &ListenCmd{flags: flags, rt: rt}
}

// Flags returns the listen flags for registration on the root command.
// Subcommands inherit them, so `herald listen --demo` and
// `herald worker --profiler-port` both resolve here.
func (cmd *ListenCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("HERALD_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
		&cli.BoolFlag{
			Name:        "demo",
			Usage:       "issue a local token and publish sample notifications in-process",
			Sources:     cli.EnvVars("HERALD_DEMO"),
			Destination: &cmd.demo,
		},
	}
}

// Register adds the listen command to the application.
func (cmd *ListenCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "listen",
		Usage: "Open the notification bell and receive pushes",
		Description: `Opens the interactive notification bell. Pushes addressed to this device's
token arrive over NATS (nats.url) and appear as toasts and in the dropdown.

Press 'p' to request notification permission and 'b' to open the dropdown.
With --demo no delivery service or NATS server is needed: a local token is
issued and sample notifications are published in-process.`,
		Action: cmd.run,
	})

	return app
}

// Run executes listen. Exported for use as default command.
func (cmd *ListenCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *ListenCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := cmd.rt.Config

	stopProfiler, err := profiler.Run(ctx, cmd.flags.ProfilerPort, logging.Component("profiler"))
	if err != nil {
		return err
	}
	defer stopProfiler()

	// stderr logs would draw over the alt screen
	if cmd.flags.LogFile == "" {
		held := &logutils.DeferredWriter{}
		restore := logging.Redirect(held)
		defer func() {
			restore()
			_ = held.Flush(os.Stderr)
		}()
	}

	inbox := tui.NewInbox()
	presenter := tui.NewPresenter(inbox)
	defer presenter.Close()

	opts := AppOptions{Prompter: presenter, Display: presenter}

	var demoSource *chansource.Source
	switch {
	case cmd.demo:
		demoSource = chansource.New()
		defer func() { _ = demoSource.Close() }()
		opts.Source = demoSource
		opts.Tokens = delivery.LocalSource{}
	case cfg.NATSEnabled():
		src, err := natssource.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			return err
		}
		defer func() { _ = src.Close() }()
		opts.Source = src
	default:
		local := chansource.New()
		defer func() { _ = local.Close() }()
		opts.Source = local
	}

	app, err := cmd.rt.App(ctx, cmd.flags, opts)
	if err != nil {
		return err
	}

	detach := presenter.Attach(app.Notifications, app.Bus)
	defer detach()

	granted := make(chan struct{}, 1)
	app.Bus.SubscribePermissionChanged(func(p eventbus.PermissionChangedPayload) {
		if p.New != permission.Granted {
			return
		}
		select {
		case granted <- struct{}{}:
		default:
		}
	})

	stop := app.Start(ctx)
	defer stop()

	if !cmd.demo && !cfg.NATSEnabled() {
		presenter.Status(eventbus.StatusWarning, "nats.url is not set; only in-process messages will arrive")
	}

	if app.History != nil {
		go func() {
			if _, err := app.History.Load(ctx); err != nil {
				log.Warn().Err(err).Msg("history unavailable")
				presenter.Status(eventbus.StatusWarning, "history unavailable: "+err.Error())
			}
		}()
	}

	if cmd.rt.Updates != nil {
		go func() {
			if res, _ := cmd.rt.Updates.Check(ctx, cmd.rt.Version); res != nil {
				presenter.Status(eventbus.StatusInfo, res.String())
			}
		}()
	}

	go listenWhenGranted(ctx, app, presenter, granted)
	if demoSource != nil {
		go publishDemo(ctx, app, demoSource)
	}

	model := tui.New(tui.Options{
		Store:      app.Notifications,
		Inbox:      inbox,
		History:    historyFor(app),
		Permission: app,
		Opener:     terminal.NewClients(&executil.RealExecutor{}, cfg.Worker.Opener, cfg.Worker.BaseURL),
		State:      app.Gate.Last(),
	})

	return tui.Run(ctx, model)
}

// historyFor avoids handing the model a typed nil.
func historyFor(app *herald.App) tui.History {
	if app.History == nil {
		return nil
	}
	return app.History
}

// listenWhenGranted runs the foreground listener, restarting it each time
// permission becomes granted.
func listenWhenGranted(ctx context.Context, app *herald.App, presenter *tui.Presenter, granted <-chan struct{}) {
	for {
		err := app.Listen(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Debug().Err(err).Msg("foreground listener stopped")
			if app.Gate.Last() == permission.Granted {
				presenter.Status(eventbus.StatusWarning, "not receiving pushes: "+err.Error())
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-granted:
		}
	}
}

var demoPushes = []fcm.TestPush{
	{Title: "Bid won", Body: "You won auction #42", URL: "/auctions/42", Tag: "auction-42"},
	{Title: "Outbid", Body: "Someone placed a higher bid on auction #17", URL: "/auctions/17"},
	{
		Title: "Auction ending soon",
		Body:  "Vintage camera closes in 10 minutes",
		URL:   "/auctions/88",
		Actions: []notify.Action{
			{Action: notify.ActionView, Title: "View"},
			{Action: "dismiss", Title: "Dismiss"},
		},
	},
	{Body: "Your payout has been sent"},
}

// publishDemo publishes sample pushes to the device's local token while
// permission is granted.
func publishDemo(ctx context.Context, app *herald.App, src *chansource.Source) {
	ticker := time.NewTicker(demoInterval)
	defer ticker.Stop()

	for i := 0; ; {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if app.Gate.Last() != permission.Granted {
			continue
		}
		tok, ok := app.Tokens.Token(ctx)
		if !ok {
			continue
		}

		raw, err := json.Marshal(demoPushes[i%len(demoPushes)].Payload())
		if err != nil {
			continue
		}
		if err := src.Publish(ctx, tok, raw); err != nil {
			log.Warn().Err(err).Msg("demo publish failed")
			continue
		}
		i++
	}
}

// The presenter doubles as the permission prompt inside the TUI.
var (
	_ intake.Displayer  = (*tui.Presenter)(nil)
	_ terminal.Prompter = (*tui.Presenter)(nil)
)
