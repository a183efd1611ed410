package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/push"
	"github.com/colonyops/herald/internal/fcm"
	"github.com/colonyops/herald/internal/herald"
	"github.com/colonyops/herald/internal/transport/natssource"
	"github.com/colonyops/herald/pkg/iojson"
)

type PushCmd struct {
	flags *Flags
	rt    *Runtime

	token   string
	message fcm.TestPush
	payload iojson.FileReader[json.RawMessage]
}

// NewPushCmd creates the push test and inject commands.
func NewPushCmd(flags *Flags, rt *Runtime) *PushCmd {
	return &PushCmd{flags: flags, rt: rt}
}

// Register adds the push and inject commands to the application.
func (cmd *PushCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:  "push",
			Usage: "Send pushes through the delivery service",
			Commands: []*cli.Command{
				{
					Name:      "test",
					Usage:     "Send a test notification through Firebase Cloud Messaging",
					UsageText: "herald push test --title <title> [--body <body>] [--url <url>]",
					Description: `Sends a notification to this device's token (or --token) through FCM.
Requires firebase.credentials_file.`,
					Flags:  append(cmd.messageFlags(), cmd.tokenFlag()),
					Action: cmd.runTest,
				},
			},
		},
		&cli.Command{
			Name:      "inject",
			Usage:     "Publish a push payload to a listening device over NATS",
			UsageText: "herald inject [--title <title> ...] [-f payload.json]",
			Description: `Publishes a raw push payload on {nats.subject_prefix}.{token}, where a
running 'herald listen' picks it up. Without --title the payload is read as
JSON from --file or stdin.

Examples:
  herald inject --title "Bid won" --body "You won auction #42" --url /auctions/42
  echo '{"data":{"title":"Outbid"}}' | herald inject`,
			Flags:  append(append(cmd.messageFlags(), cmd.tokenFlag()), cmd.payload.Flag()),
			Action: cmd.runInject,
		},
	)

	return app
}

func (cmd *PushCmd) messageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Usage:       "notification title",
			Destination: &cmd.message.Title,
		},
		&cli.StringFlag{
			Name:        "body",
			Usage:       "notification body",
			Destination: &cmd.message.Body,
		},
		&cli.StringFlag{
			Name:        "url",
			Usage:       "link opened on click",
			Destination: &cmd.message.URL,
		},
		&cli.StringFlag{
			Name:        "icon",
			Usage:       "icon URL",
			Destination: &cmd.message.Icon,
		},
		&cli.StringFlag{
			Name:        "image",
			Usage:       "image URL",
			Destination: &cmd.message.Image,
		},
		&cli.StringFlag{
			Name:        "tag",
			Usage:       "coalescing tag",
			Destination: &cmd.message.Tag,
		},
		&cli.BoolFlag{
			Name:        "require-interaction",
			Usage:       "keep the notification until dismissed",
			Destination: &cmd.message.RequireInteraction,
		},
	}
}

func (cmd *PushCmd) tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "token",
		Usage:       "delivery token (defaults to this device's token)",
		Destination: &cmd.token,
	}
}

func (cmd *PushCmd) runTest(ctx context.Context, c *cli.Command) error {
	cfg := cmd.rt.Config
	if !cfg.FirebaseEnabled() {
		return fmt.Errorf("push test requires firebase.credentials_file")
	}
	if cmd.message.Title == "" && cmd.message.Body == "" {
		cmd.message.Title = "Test notification"
		cmd.message.Body = "Sent by herald push test"
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tok := cmd.token
	if tok == "" {
		app, err := cmd.rt.App(ctx, cmd.flags, AppOptions{})
		if err != nil {
			return err
		}
		if err := app.Gate.State(ctx).Err(); err != nil {
			return err
		}
		var ok bool
		if tok, ok = app.Tokens.Token(ctx); !ok {
			return push.ErrTokenUnavailable
		}
	}

	sender, err := fcm.Dial(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.ProjectID)
	if err != nil {
		return err
	}
	id, err := sender.Send(ctx, tok, cmd.message)
	if err != nil {
		return err
	}

	newPrinter(c).Successf("sent %s", id)
	return nil
}

func (cmd *PushCmd) runInject(ctx context.Context, c *cli.Command) error {
	cfg := cmd.rt.Config
	if !cfg.NATSEnabled() {
		return fmt.Errorf("inject requires nats.url; the in-process source only serves 'herald listen --demo'")
	}

	raw, err := cmd.injectPayload()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tok := cmd.token
	if tok == "" {
		app, err := cmd.rt.App(ctx, cmd.flags, AppOptions{})
		if err != nil {
			return err
		}
		if tok, err = storedToken(ctx, app); err != nil {
			return err
		}
	}

	src, err := natssource.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	if err := src.Publish(ctx, tok, raw); err != nil {
		return err
	}

	r := notify.Normalize(notify.ParsePayload(raw), time.Now())
	newPrinter(c).Successf("published %q", r.Title)
	return nil
}

func (cmd *PushCmd) injectPayload() ([]byte, error) {
	if cmd.message.Title != "" || cmd.message.Body != "" {
		return json.Marshal(cmd.message.Payload())
	}
	raw, err := cmd.payload.Read()
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// storedToken returns the last token persisted by a listening session.
func storedToken(ctx context.Context, app *herald.App) (string, error) {
	st, err := app.States.Load(ctx)
	if err != nil {
		return "", err
	}
	if st.Token == "" {
		return "", fmt.Errorf("%w: no stored token; run 'herald token' or pass --token", push.ErrTokenUnavailable)
	}
	return st.Token, nil
}
