package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/herald/internal/core/push"
	"github.com/colonyops/herald/pkg/iojson"
)

type DeviceCmd struct {
	flags *Flags
	rt    *Runtime

	// token flags
	refresh bool

	// register flags
	force bool

	// status flags
	format string
}

// NewDeviceCmd creates the token, register, unregister and status commands.
func NewDeviceCmd(flags *Flags, rt *Runtime) *DeviceCmd {
	return &DeviceCmd{flags: flags, rt: rt}
}

// Register adds the device commands to the application.
func (cmd *DeviceCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:        "token",
			Usage:       "Print the push delivery token",
			Description: "Prints the delivery token for this device. Requires granted permission. The token is cached for push.token_ttl; --refresh bypasses the cache.",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "refresh",
					Usage:       "request a new token from the delivery service",
					Destination: &cmd.refresh,
				},
			},
			Action: cmd.runToken,
		},
		&cli.Command{
			Name:  "register",
			Usage: "Register this device with the backend",
			Description: `Registers the device for push delivery. Registration is skipped while a
previous registration is younger than the five minute cooldown unless --force is set.`,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "force",
					Usage:       "ignore the registration cooldown",
					Destination: &cmd.force,
				},
			},
			Action: cmd.runRegister,
		},
		&cli.Command{
			Name:   "unregister",
			Usage:  "Remove this device from the backend and forget its token",
			Action: cmd.runUnregister,
		},
		&cli.Command{
			Name:  "status",
			Usage: "Show the device and registration state",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "format",
					Usage:       "output format (text, json)",
					Value:       "text",
					Destination: &cmd.format,
				},
			},
			Action: cmd.runStatus,
		},
	)

	return app
}

func (cmd *DeviceCmd) runToken(ctx context.Context, c *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := cmd.rt.App(ctx, cmd.flags, AppOptions{})
	if err != nil {
		return err
	}
	if err := app.Gate.State(ctx).Err(); err != nil {
		return err
	}

	var (
		tok string
		ok  bool
	)
	if cmd.refresh {
		tok, ok = app.Tokens.Refresh(ctx)
	} else {
		tok, ok = app.Tokens.Token(ctx)
	}
	if !ok {
		return push.ErrTokenUnavailable
	}

	newPrinter(c).Printf("%s", tok)
	return nil
}

func (cmd *DeviceCmd) runRegister(ctx context.Context, c *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := cmd.rt.App(ctx, cmd.flags, AppOptions{})
	if err != nil {
		return err
	}
	if err := requireBackend(app); err != nil {
		return err
	}
	if err := app.Gate.State(ctx).Err(); err != nil {
		return fmt.Errorf("%w (run 'herald permission request')", err)
	}

	var res push.Result
	if cmd.force {
		res = app.ForceRegister(ctx)
	} else {
		res = app.Sync(ctx)
	}

	p := newPrinter(c)
	switch res.Outcome {
	case push.Registered:
		p.Successf("device registered for user %s", app.UserID())
	case push.Skipped:
		p.Mutedf("registered less than %s ago; use --force to register again", push.Cooldown)
	default:
		return res.Err
	}
	return nil
}

func (cmd *DeviceCmd) runUnregister(ctx context.Context, c *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := cmd.rt.App(ctx, cmd.flags, AppOptions{})
	if err != nil {
		return err
	}
	if err := app.Unregister(ctx); err != nil {
		return err
	}

	newPrinter(c).Successf("device unregistered for user %s", app.UserID())
	return nil
}

type deviceStatus struct {
	Permission     string `json:"permission"`
	DeviceID       string `json:"deviceId"`
	UserID         string `json:"userId,omitempty"`
	HasToken       bool   `json:"hasToken"`
	LastRegistered string `json:"lastRegistered,omitempty"`
	Backend        bool   `json:"backend"`
}

func (cmd *DeviceCmd) runStatus(ctx context.Context, c *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := cmd.rt.App(ctx, cmd.flags, AppOptions{})
	if err != nil {
		return err
	}

	d, err := app.Descriptor(ctx)
	if err != nil {
		return err
	}
	st, err := app.States.Load(ctx)
	if err != nil {
		return err
	}

	out := deviceStatus{
		Permission: string(app.Gate.State(ctx)),
		DeviceID:   d.DeviceID,
		UserID:     app.UserID(),
		HasToken:   st.Token != "",
		Backend:    app.Registrar != nil,
	}
	if !st.LastRegisteredAt.IsZero() {
		out.LastRegistered = st.LastRegisteredAt.Local().Format("2006-01-02 15:04:05")
	}

	if cmd.format == "json" {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out)
	}

	p := newPrinter(c)
	p.Printf("permission:  %s", out.Permission)
	p.Printf("device:      %s (%s, %s)", d.DeviceID, d.DeviceType, d.DeviceName)
	if out.UserID != "" {
		p.Printf("user:        %s", out.UserID)
	}
	p.Printf("token:       %t", out.HasToken)
	if out.LastRegistered != "" {
		p.Printf("registered:  %s", out.LastRegistered)
	} else {
		p.Mutedf("registered:  never")
	}
	if !out.Backend {
		p.Warnf("no backend configured")
	}
	return nil
}
