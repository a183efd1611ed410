package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/herald/internal/commands"
	"github.com/colonyops/herald/internal/core/config"
	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/core/styles"
	"github.com/colonyops/herald/internal/updatecheck"
	"github.com/colonyops/herald/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() falls back
	// to runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() (string, string) {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return v, fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	// A missing .env is the common case.
	_ = godotenv.Load()

	var (
		logCloser func()
		flags     = &commands.Flags{}
		rt        = &commands.Runtime{}
	)

	appVersion, buildInfo := build()

	app := &cli.Command{
		Name:      "herald",
		Usage:     "Receive push notifications in the terminal",
		UsageText: "herald [global options] command [command options]",
		Description: `Herald registers this device for push notifications, shows incoming pushes
as toasts with an unread bell, and serves a background handler for pushes
that arrive while no session is open.

Run 'herald' with no arguments to open the notification bell.
Run 'herald permission request' to allow notifications and register the device.`,
		Version: buildInfo,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("HERALD_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("HERALD_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("HERALD_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("HERALD_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "user-id",
				Usage:       "user the device registers for (defaults to backend.user_id or the auth token subject)",
				Sources:     cli.EnvVars("HERALD_USER_ID"),
				Destination: &flags.UserID,
			},
			&cli.BoolFlag{
				Name:        "no-update-check",
				Usage:       "do not check GitHub for newer releases",
				Sources:     cli.EnvVars("HERALD_NO_UPDATE_CHECK"),
				Destination: &flags.NoUpdateCheck,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logging.Configure(logger)
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation reports unknown names)
			if palette, ok := styles.GetPalette(cfg.TUI.Theme); ok {
				styles.SetTheme(palette)
			}

			storage, err := commands.OpenStorage(ctx, cfg)
			if err != nil {
				return ctx, fmt.Errorf("open storage: %w", err)
			}

			*rt = commands.Runtime{
				Config:  cfg,
				Storage: storage,
				Version: appVersion,
			}
			if !flags.NoUpdateCheck {
				rt.Updates = updatecheck.New(storage)
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if err := rt.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close storage")
				return err
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	listenCmd := commands.NewListenCmd(flags, rt)

	app = listenCmd.Register(app)
	app = commands.NewPermissionCmd(flags, rt).Register(app)
	app = commands.NewDeviceCmd(flags, rt).Register(app)
	app = commands.NewHistoryCmd(flags, rt).Register(app)
	app = commands.NewPushCmd(flags, rt).Register(app)
	app = commands.NewWorkerCmd(flags, rt).Register(app)
	app = commands.NewConfigValidateCmd(flags, rt).Register(app)
	app = commands.NewDoctorCmd(flags, rt).Register(app)

	// Register listen flags on root command
	app.Flags = append(app.Flags, listenCmd.Flags()...)

	// Open the bell when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'herald --help' for usage", c.Args().First())
		}
		return listenCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
