package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/werk/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag

	for _, g := range groups {
		flags = append(flags, g...)
	}

	return flags
}

// Get retrieves the werk app instance.
func Get() *cli.App {
	werkApp := &cli.App{
		Name: "werk",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		Werk turns captured window activity into work sessions and classifies
		them with your assignment rules.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "aggregate",
				Usage:  "Recompute sessions from events. Defaults to the last 7 days",
				Flags:  withFlags(rangeFlags, aggregationFlags, []cli.Flag{jsonFlag}),
				Action: aggregateAction,
			},
			{
				Name:  "backfill",
				Usage: "Recompute the last N days for every user with events",
				Flags: withFlags(
					[]cli.Flag{userFlag, daysFlag, workersFlag, jsonFlag},
					aggregationFlags,
				),
				Action: backfillAction,
			},
			{
				Name:  "sessions",
				Usage: "List, clear or assign sessions",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "Print the sessions within a time period",
						Flags:  withFlags(rangeFlags, []cli.Flag{jsonFlag}),
						Action: listSessionsAction,
					},
					{
						Name:   "clear",
						Usage:  "Delete the sessions within a time period",
						Flags:  withFlags(rangeFlags, []cli.Flag{yesFlag}),
						Action: clearSessionsAction,
					},
					{
						Name:      "assign",
						Usage:     "Assign sessions to a project",
						ArgsUsage: "<id>...",
						Flags: []cli.Flag{
							projectFlag,
							milestoneFlag,
							activityFlag,
							commentFlag,
							eventFlag,
						},
						Action: assignAction,
					},
				},
			},
			{
				Name:  "events",
				Usage: "Import or list captured events",
				Subcommands: []*cli.Command{
					{
						Name:   "import",
						Usage:  "Import events from JSON lines",
						Flags:  []cli.Flag{fileFlag},
						Action: importEventsAction,
					},
					{
						Name:   "list",
						Usage:  "Print the events within a time period",
						Flags:  withFlags(rangeFlags, []cli.Flag{jsonFlag}),
						Action: listEventsAction,
					},
				},
			},
			{
				Name:  "rules",
				Usage: "Manage assignment rules",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "Print every rule",
						Flags:  []cli.Flag{jsonFlag},
						Action: listRulesAction,
					},
					{
						Name:  "add",
						Usage: "Add a rule",
						Flags: []cli.Flag{
							nameFlag,
							userFlag,
							processFlag,
							titleContainsFlag,
							titleRegexFlag,
							projectFlag,
							milestoneFlag,
							activityFlag,
							commentFlag,
							priorityFlag,
							disabledFlag,
						},
						Action: addRuleAction,
					},
					{
						Name:      "delete",
						Usage:     "Delete rules by id",
						ArgsUsage: "<id>...",
						Flags:     []cli.Flag{yesFlag},
						Action:    deleteRuleAction,
					},
					{
						Name:   "import",
						Usage:  "Import rules from a YAML file",
						Flags:  []cli.Flag{fileFlag},
						Action: importRulesAction,
					},
					{
						Name:   "export",
						Usage:  "Export every rule as YAML",
						Flags:  []cli.Flag{outputFlag},
						Action: exportRulesAction,
					},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Show the rule that matches a session or event",
				ArgsUsage: "<id>...",
				Flags:     []cli.Flag{eventFlag, applyFlag, jsonFlag},
				Action:    suggestAction,
			},
			{
				Name: "stats",
				Usage: `
				Summarize active time per process, user and day. Defaults to a
				reporting period of 7 days`,
				Flags:  withFlags(rangeFlags, []cli.Flag{jsonFlag}),
				Action: statsAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
			{
				Name:   "setup",
				Usage:  "Choose the main settings interactively",
				Action: setupAction,
			},
		},
		Flags: []cli.Flag{
			noColorFlag,
			debugFlag,
		},
		Before: beforeAction,
		After:  afterAction,
	}

	return werkApp
}
