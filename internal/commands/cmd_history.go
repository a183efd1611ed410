package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/styles"
	"github.com/colonyops/herald/internal/herald"
	"github.com/colonyops/herald/pkg/iojson"
)

type HistoryCmd struct {
	flags *Flags
	rt    *Runtime

	// list flags
	format     string
	unreadOnly bool
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags, rt *Runtime) *HistoryCmd {
	return &HistoryCmd{flags: flags, rt: rt}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "history",
		Usage: "Browse the notification history stored by the backend",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List notifications, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
					&cli.BoolFlag{
						Name:        "unread",
						Usage:       "only show unread notifications",
						Destination: &cmd.unreadOnly,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:          "read",
				Usage:         "Mark a notification read",
				UsageText:     "herald history read <id>",
				ShellComplete: NotificationIDCompleter(cmd.flags, cmd.rt),
				Action:        cmd.runRead,
			},
			{
				Name:   "read-all",
				Usage:  "Mark every notification read",
				Action: cmd.runReadAll,
			},
			{
				Name:          "delete",
				Usage:         "Delete a notification",
				UsageText:     "herald history delete <id>",
				ShellComplete: NotificationIDCompleter(cmd.flags, cmd.rt),
				Action:        cmd.runDelete,
			},
		},
	})

	return app
}

// history builds the app and loads the backend history into its store.
func (cmd *HistoryCmd) history(ctx context.Context) (*herald.App, error) {
	app, err := cmd.rt.App(ctx, cmd.flags, AppOptions{})
	if err != nil {
		return nil, err
	}
	if app.History == nil {
		return nil, fmt.Errorf("%w: set backend.url", herald.ErrNoBackend)
	}
	if _, err := app.History.Load(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := cmd.history(ctx)
	if err != nil {
		return err
	}

	records := app.Notifications.All()
	if cmd.unreadOnly {
		records = records[:0]
		for r := range app.Notifications.UnreadOnly() {
			records = append(records, r)
		}
	}

	if cmd.format == "json" {
		if records == nil {
			records = []notify.Record{}
		}
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, records)
	}

	p := newPrinter(c)
	if len(records) == 0 {
		p.Mutedf("no notifications")
		return nil
	}

	now := time.Now()
	for _, r := range records {
		icon, title := styles.IconUnread, styles.ItemTitleStyle.Render(r.Title)
		if r.Read {
			icon, title = styles.IconRead, styles.ItemReadStyle.Render(r.Title)
		}
		p.Printf("%s %s  %s  %s", icon, title, styles.ItemMetaStyle.Render(age(r.Timestamp, now)), styles.MutedStyle.Render(r.ID))
		if r.Body != "" {
			p.Printf("  %s", r.Body)
		}
		if r.URL != "" {
			p.Printf("  %s %s", styles.IconLink, r.URL)
		}
	}
	p.Printf("")
	p.Mutedf("%d notification(s), %d unread", len(app.Notifications.All()), app.Notifications.UnreadCount())
	return nil
}

func (cmd *HistoryCmd) runRead(ctx context.Context, c *cli.Command) error {
	id, err := singleID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := cmd.history(ctx)
	if err != nil {
		return err
	}
	if err := app.History.MarkRead(ctx, id); err != nil {
		return err
	}
	newPrinter(c).Successf("marked %s read", id)
	return nil
}

func (cmd *HistoryCmd) runReadAll(ctx context.Context, c *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := cmd.history(ctx)
	if err != nil {
		return err
	}
	if err := app.History.MarkAllRead(ctx); err != nil {
		return err
	}
	newPrinter(c).Successf("marked all notifications read")
	return nil
}

func (cmd *HistoryCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := singleID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := cmd.history(ctx)
	if err != nil {
		return err
	}
	if err := app.History.Delete(ctx, id); err != nil {
		return err
	}
	newPrinter(c).Successf("deleted %s", id)
	return nil
}

func singleID(c *cli.Command) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one notification id")
	}
	return c.Args().First(), nil
}

func age(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Local().Format("Jan 2 15:04")
	}
}
