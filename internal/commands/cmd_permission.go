package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/herald/internal/core/permission"
	"github.com/colonyops/herald/internal/core/push"
)

type PermissionCmd struct {
	flags *Flags
	rt    *Runtime

	// set flags
	setState string
}

// NewPermissionCmd creates a new permission command.
func NewPermissionCmd(flags *Flags, rt *Runtime) *PermissionCmd {
	return &PermissionCmd{flags: flags, rt: rt}
}

// Register adds the permission command to the application.
func (cmd *PermissionCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "permission",
		Usage: "Inspect and change notification permission",
		Description: `Notification permission is remembered in the state store.

Requesting permission prompts once; a remembered answer is returned without
prompting again. Use 'reset' to be asked again.`,
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the current permission state",
				Action: cmd.runStatus,
			},
			{
				Name:        "request",
				Usage:       "Ask for permission and register the device when granted",
				Description: "Prompts for permission when none has been decided. A granted permission acquires a delivery token and registers the device.",
				Action:      cmd.runRequest,
			},
			{
				Name:      "set",
				Usage:     "Record a decision without prompting",
				UsageText: "herald permission set <granted|denied>",
				Action:    cmd.runSet,
			},
			{
				Name:   "reset",
				Usage:  "Forget the remembered decision",
				Action: cmd.runReset,
			},
		},
	})

	return app
}

func (cmd *PermissionCmd) runStatus(ctx context.Context, c *cli.Command) error {
	st, err := cmd.rt.Host(nil).Current(ctx)
	if err != nil {
		return err
	}
	printState(newPrinter(c), st)
	return nil
}

func (cmd *PermissionCmd) runRequest(ctx context.Context, c *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := cmd.rt.App(ctx, cmd.flags, AppOptions{})
	if err != nil {
		return err
	}

	p := newPrinter(c)
	st := app.RequestPermission(ctx)
	printState(p, st)
	if st != permission.Granted {
		return nil
	}

	res := app.Sync(ctx)
	switch res.Outcome {
	case push.Registered:
		p.Successf("device registered for user %s", app.UserID())
	case push.Failed:
		return res.Err
	default:
		if app.Registrar == nil {
			p.Mutedf("no backend configured; device not registered")
		} else {
			p.Mutedf("registration is up to date")
		}
	}
	return nil
}

func (cmd *PermissionCmd) runSet(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one state (granted or denied)")
	}
	st, err := permission.ParseState(c.Args().First())
	if err != nil {
		return err
	}
	if err := cmd.rt.Host(nil).Set(ctx, st); err != nil {
		return err
	}
	printState(newPrinter(c), st)
	return nil
}

func (cmd *PermissionCmd) runReset(ctx context.Context, c *cli.Command) error {
	if err := cmd.rt.Host(nil).Reset(ctx); err != nil {
		return err
	}
	newPrinter(c).Successf("permission reset; you will be asked again")
	return nil
}

func printState(p printer, st permission.State) {
	switch st {
	case permission.Granted:
		p.Successf("%s", st)
	case permission.Denied:
		p.Errorf("%s: %s", st, st.StatusMessage())
	default:
		p.Warnf("%s: %s", st, st.StatusMessage())
	}
}
