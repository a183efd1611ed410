package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/herald/internal/core/doctor"
	"github.com/colonyops/herald/internal/core/push"
	"github.com/colonyops/herald/internal/core/styles"
	"github.com/colonyops/herald/internal/platform/terminal"
	"github.com/colonyops/herald/pkg/iojson"
)

type DoctorCmd struct {
	flags   *Flags
	rt      *Runtime
	format  string
	autofix bool
}

// NewDoctorCmd creates a new doctor command.
func NewDoctorCmd(flags *Flags, rt *Runtime) *DoctorCmd {
	return &DoctorCmd{flags: flags, rt: rt}
}

// Register adds the doctor command to the application.
func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your herald setup",
		UsageText:   "herald doctor [options]",
		Description: "Runs diagnostic checks on configuration, services, and device registration.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., create the data directory)",
				Destination: &cmd.autofix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	cfg := cmd.rt.Config

	opener := cfg.Worker.Opener
	if opener == "" {
		opener = terminal.DefaultOpener()
	}

	endpoints := []doctor.Endpoint{
		{Label: "backend", URL: cfg.Backend.URL, Unset: "not configured; devices will not be registered"},
		{Label: "delivery", URL: cfg.Delivery.URL, Unset: "not configured; tokens unavailable outside --demo"},
		{Label: "nats", URL: cfg.NATS.URL, Unset: "not configured; using the in-process source", Optional: true},
	}
	if cfg.Storage.RedisURL != "" {
		endpoints = append(endpoints, doctor.Endpoint{Label: "redis", URL: cfg.Storage.RedisURL})
	}

	return []doctor.Check{
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
		doctor.NewToolsCheck(opener),
		doctor.NewEndpointsCheck(endpoints...),
		doctor.NewDeviceCheck(cfg.DataDir, cmd.rt.Host(nil), push.NewStateStore(cmd.rt.Storage), cmd.autofix),
		doctor.NewVersionCheck(cmd.rt.Version, cmd.rt.updates()),
	}
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := doctor.RunAll(ctx, cmd.checks())

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(c, results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: failed == 0,
		Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
		Checks:  results,
	}

	return iojson.WriteWith(c.Root().Writer, os.Stderr, out)
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func (cmd *DoctorCmd) outputText(c *cli.Command, results []doctor.Result) error {
	p := newPrinter(c)

	p.Printf("")
	p.Printf("%s", styles.HeaderStyle.Render("Herald Doctor"))
	p.Mutedf("%s", strings.Repeat("─", 40))
	p.Printf("")

	for _, result := range results {
		p.Printf("%s", styles.ItemTitleStyle.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.MutedStyle.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = styles.SuccessStyle.Render("✔")
			case doctor.StatusWarn:
				icon = styles.WarningStyle.Render("●")
			case doctor.StatusFail:
				icon = styles.ErrorStyle.Render("✘")
			}

			p.Printf("  %s %s%s", icon, item.Label, detail)
		}

		p.Printf("")
	}

	passed, warned, failed := doctor.Summary(results)
	p.Printf("%s  %s  %s",
		styles.SuccessStyle.Render(fmt.Sprintf("%d passed", passed)),
		styles.WarningStyle.Render(fmt.Sprintf("%d warnings", warned)),
		styles.ErrorStyle.Render(fmt.Sprintf("%d failed", failed)),
	)

	if !cmd.autofix {
		if fixable := doctor.CountFixable(results); fixable > 0 {
			p.Printf("")
			p.Mutedf("Run 'herald doctor --autofix' to fix %d issue(s)", fixable)
		}
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}

	return nil
}
