package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

// NotificationIDCompleter returns a ShellCompleteFunc that suggests unread
// notification ids from the backend history as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func NotificationIDCompleter(flags *Flags, rt *Runtime) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		app, err := rt.App(ctx, flags, AppOptions{})
		if err != nil || app.History == nil {
			return
		}
		if _, err := app.History.Load(ctx); err != nil {
			return
		}

		w := cmd.Root().Writer
		for r := range app.Notifications.UnreadOnly() {
			_, _ = fmt.Fprintf(w, "%s:%s\n", r.ID, r.Title)
		}
	}
}
