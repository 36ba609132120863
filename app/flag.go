package app

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/werk/internal/timeutil"
)

var (
	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Log at debug level and dump the effective configuration",
	}

	userFlag = &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "Restrict the command to a single user id",
	}

	periodFlag = &cli.StringFlag{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "Specify a time period. Options: " + periodOptions(),
	}

	startFlag = &cli.StringFlag{
		Name:    "start",
		Aliases: []string{"s"},
		Usage:   "Specify a start date (e.g. '2 days ago', '4 March 2024')",
	}

	endFlag = &cli.StringFlag{
		Name:    "end",
		Aliases: []string{"e"},
		Usage:   "Specify an end date (defaults to now)",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the output as JSON",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Do not ask for confirmation",
	}

	maxBreakFlag = &cli.IntFlag{
		Name:  "max-break",
		Usage: "Longest gap in minutes that still continues a session (default: 5)",
	}

	minSimilarityFlag = &cli.Float64Flag{
		Name:  "min-similarity",
		Usage: "Minimum title similarity between 0 and 1 for a merge (default: 0.65)",
	}

	minDurationFlag = &cli.IntFlag{
		Name:  "min-duration",
		Usage: "Drop sessions shorter than this many seconds (default: 120)",
	}

	hookFlag = &cli.StringFlag{
		Name:  "hook",
		Usage: "Execute an arbitrary command after each recompute",
	}

	noRulesFlag = &cli.BoolFlag{
		Name:  "no-rules",
		Usage: "Do not apply assignment rules to the new sessions",
	}

	daysFlag = &cli.IntFlag{
		Name:    "days",
		Aliases: []string{"d"},
		Usage:   "Number of days to backfill (default: 30)",
	}

	workersFlag = &cli.IntFlag{
		Name:    "workers",
		Aliases: []string{"w"},
		Usage:   "Number of users processed concurrently (default: 4)",
	}

	fileFlag = &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Read from a file instead of standard input",
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write to a file instead of standard output",
	}

	eventFlag = &cli.BoolFlag{
		Name:  "event",
		Usage: "Treat the id as an event id instead of a session id",
	}

	applyFlag = &cli.BoolFlag{
		Name:  "apply",
		Usage: "Store the suggestion as the assignment",
	}

	projectFlag = &cli.Uint64Flag{
		Name:  "project",
		Usage: "Project id",
	}

	milestoneFlag = &cli.Uint64Flag{
		Name:  "milestone",
		Usage: "Milestone id",
	}

	activityFlag = &cli.StringFlag{
		Name:  "activity",
		Usage: "Activity label",
	}

	commentFlag = &cli.StringFlag{
		Name:  "comment",
		Usage: "Assignment comment. Rules substitute {title} and {process}",
	}

	nameFlag = &cli.StringFlag{
		Name:     "name",
		Usage:    "Rule name",
		Required: true,
	}

	processFlag = &cli.StringFlag{
		Name:  "process",
		Usage: "Process name pattern, '*' matches any run of characters",
	}

	titleContainsFlag = &cli.StringFlag{
		Name:  "title-contains",
		Usage: "Case-insensitive text the title must contain",
	}

	titleRegexFlag = &cli.StringFlag{
		Name:  "title-regex",
		Usage: "Case-insensitive regular expression the title must match",
	}

	priorityFlag = &cli.IntFlag{
		Name:  "priority",
		Usage: "Rules with a higher priority are evaluated first",
	}

	disabledFlag = &cli.BoolFlag{
		Name:  "disabled",
		Usage: "Store the rule without enabling it",
	}
)

func periodOptions() string {
	names := make([]string, len(timeutil.PeriodCollection))
	for i, p := range timeutil.PeriodCollection {
		names[i] = string(p)
	}

	return strings.Join(names, ", ")
}

var (
	rangeFlags = []cli.Flag{userFlag, periodFlag, startFlag, endFlag}

	aggregationFlags = []cli.Flag{
		maxBreakFlag,
		minSimilarityFlag,
		minDurationFlag,
		hookFlag,
		noRulesFlag,
	}
)
