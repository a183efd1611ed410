package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/platform/terminal"
	"github.com/colonyops/herald/internal/worker"
	"github.com/colonyops/herald/pkg/executil"
	"github.com/colonyops/herald/pkg/profiler"
)

type WorkerCmd struct {
	flags *Flags
	rt    *Runtime

	listen string
	bell   bool
}

// NewWorkerCmd creates a new worker command.
func NewWorkerCmd(flags *Flags, rt *Runtime) *WorkerCmd {
	return &WorkerCmd{flags: flags, rt: rt}
}

// Register adds the worker command to the application.
func (cmd *WorkerCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "worker",
		Usage: "Run the background notification handler",
		Description: `Serves the background handler over HTTP. Pushes posted to <script_path>/push
are shown as terminal toasts; clicks posted to <script_path>/notificationclick
focus or open the notification URL.

The worker holds no notification history; it only displays and routes clicks.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "listen",
				Usage:       "address to listen on (defaults to worker.listen)",
				Sources:     cli.EnvVars("HERALD_WORKER_LISTEN"),
				Destination: &cmd.listen,
			},
			&cli.BoolFlag{
				Name:        "bell",
				Usage:       "ring the terminal bell for each notification",
				Value:       true,
				Destination: &cmd.bell,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WorkerCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopProfiler, err := profiler.Run(ctx, cmd.flags.ProfilerPort, logging.Component("profiler"))
	if err != nil {
		return err
	}
	defer stopProfiler()

	cfg := cmd.rt.Config
	addr := cmd.listen
	if addr == "" {
		addr = cfg.Worker.Listen
	}

	toasts := terminal.NewToasts(c.Root().Writer, cmd.bell)
	clients := terminal.NewClients(&executil.RealExecutor{}, cfg.Worker.Opener, cfg.Worker.BaseURL)
	bg := intake.NewBackground(toasts, clients)

	srv := worker.New(bg, intake.Registration{
		ScriptPath: cfg.Worker.ScriptPath,
		Scope:      cfg.Worker.Scope,
	})

	newPrinter(c).Mutedf("worker listening on http://%s%s", addr, cfg.Worker.ScriptPath)
	if err := srv.Listen(ctx, addr); err != nil {
		return err
	}
	log.Info().Int("shown", len(toasts.Shown())).Strs("opened", clients.Views()).Msg("worker stopped")
	return nil
}
