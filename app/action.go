package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/davecgh/go-spew/spew"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/werk/internal/apperr"
	"github.com/ayoisaiah/werk/internal/config"
	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/osutil"
	"github.com/ayoisaiah/werk/internal/pathutil"
	"github.com/ayoisaiah/werk/internal/ui"
	"github.com/ayoisaiah/werk/service"
	"github.com/ayoisaiah/werk/stats"
	"github.com/ayoisaiah/werk/store"
)

const (
	envNoColor     = "NO_COLOR"
	envWerkNoColor = "WERK_NO_COLOR"
	envDarkTheme   = "WERK_DARK_THEME"
)

var (
	errInvalidID = &apperr.Error{
		Message: "invalid id %q: expected a positive number",
	}

	errMissingID = &apperr.Error{
		Message: "expected at least one id argument",
	}

	errProjectRequired = &apperr.Error{
		Message: "--project is required",
	}

	errAborted = errors.New("aborted")
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// env holds what every command needs once the configuration is loaded.
type env struct {
	cfg    *config.Config
	db     store.DB
	svc    *service.Service
	logger *slog.Logger
	closer func() error
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		e.logger.Error("closing database", slog.Any("error", err))
	}

	_ = e.closer()
}

// load reads the configuration, sets up logging and opens the database.
func load(ctx *cli.Context) (*env, error) {
	cfg, err := config.New(
		config.WithViperConfig(pathutil.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(cfg, pathutil.LogFilePath())
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)

	if ctx.Bool("debug") {
		logger.DebugContext(
			ctx.Context,
			"effective configuration",
			slog.String("config", spew.Sdump(cfg)),
		)
	}

	db, err := store.NewClient(pathutil.DBFilePath())
	if err != nil {
		_ = logFile.Close()
		return nil, err
	}

	return &env{
		cfg:    cfg,
		db:     db,
		svc:    service.New(db, cfg, service.WithLogger(logger)),
		logger: logger,
		closer: logFile.Close,
	}, nil
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID.Fmt(s)
	}

	return id, nil
}

func parseIDs(ctx *cli.Context) ([]uint64, error) {
	if ctx.NArg() == 0 {
		return nil, errMissingID
	}

	ids := make([]uint64, 0, ctx.NArg())

	for _, arg := range ctx.Args().Slice() {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func printJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(config.Stdout, string(b))

	return err
}

// confirm asks a yes/no question unless --yes was given.
func confirm(ctx *cli.Context, title string) error {
	if ctx.Bool("yes") {
		return nil
	}

	var ok bool

	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return err
	}

	if !ok {
		return errAborted
	}

	return nil
}

// aggregateAction handles the aggregate command which recomputes the
// sessions of one user, or of every user, within a time range.
func aggregateAction(ctx *cli.Context) error {
	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	filter, err := config.Filter(ctx, time.Now())
	if err != nil {
		return err
	}

	users := []string{filter.User}

	if filter.User == "" {
		users, err = e.db.Users(ctx.Context)
		if err != nil {
			return err
		}
	}

	reports := make([]*service.Report, 0, len(users))

	for _, u := range users {
		r, err := e.svc.Recompute(ctx.Context, u, filter.StartTime, filter.EndTime)
		if err != nil {
			return err
		}

		reports = append(reports, r)
	}

	return printReports(ctx, reports)
}

// backfillAction handles the backfill command which recomputes the last N
// days for every user with events.
func backfillAction(ctx *cli.Context) error {
	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	reports, err := e.svc.Backfill(
		ctx.Context,
		ctx.String("user"),
		e.cfg.Backfill.Days,
	)
	if err != nil {
		return err
	}

	return printReports(ctx, reports)
}

func printReports(ctx *cli.Context, reports []*service.Report) error {
	if ctx.Bool("json") {
		return printJSON(reports)
	}

	if len(reports) == 0 {
		pterm.Info.Println("No events found")
		return nil
	}

	printReportsTable(config.Stdout, reports)

	return nil
}

// listSessionsAction handles the sessions list command and prints a table of
// the sessions started within a time period.
func listSessionsAction(ctx *cli.Context) error {
	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	filter, err := config.Filter(ctx, time.Now())
	if err != nil {
		return err
	}

	sessions, err := e.db.Sessions(
		ctx.Context,
		filter.User,
		filter.StartTime,
		filter.EndTime,
	)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(sessions)
	}

	return listSessions(sessions)
}

// clearSessionsAction handles the sessions clear command which deletes the
// sessions started within a time period. It asks for confirmation first.
func clearSessionsAction(ctx *cli.Context) error {
	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	filter, err := config.Filter(ctx, time.Now())
	if err != nil {
		return err
	}

	sessions, err := e.db.Sessions(
		ctx.Context,
		filter.User,
		filter.StartTime,
		filter.EndTime,
	)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		pterm.Info.Println(noSessionsMsg)
		return nil
	}

	printSessionsTable(config.Stdout, sessions)

	err = confirm(ctx, "The above sessions will be deleted permanently. Proceed?")
	if err != nil {
		return err
	}

	removed, err := e.db.DeleteSessions(
		ctx.Context,
		filter.User,
		filter.StartTime,
		filter.EndTime,
	)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("%d session(s) deleted", removed)

	return nil
}

// assignAction handles the sessions assign command which records a manual
// classification for one or more sessions.
func assignAction(ctx *cli.Context) error {
	ids, err := parseIDs(ctx)
	if err != nil {
		return err
	}

	if ctx.Uint64("project") == 0 {
		return errProjectRequired
	}

	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	kind := models.TargetSession
	if ctx.Bool("event") {
		kind = models.TargetEvent
	}

	for _, id := range ids {
		a := models.Assignment{
			Kind:        kind,
			TargetID:    id,
			ProjectID:   ctx.Uint64("project"),
			MilestoneID: ctx.Uint64("milestone"),
			Activity:    ctx.String("activity"),
			Comment:     ctx.String("comment"),
		}

		if err := e.svc.Assign(ctx.Context, &a); err != nil {
			return err
		}

		pterm.Success.Printfln("%s %d assigned to project %d", kind, id, a.ProjectID)
	}

	return nil
}

// suggestAction handles the suggest command which classifies a stored
// session or event against the current rules.
func suggestAction(ctx *cli.Context) error {
	ids, err := parseIDs(ctx)
	if err != nil {
		return err
	}

	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	kind := models.TargetSession
	if ctx.Bool("event") {
		kind = models.TargetEvent
	}

	rows := make([]suggestionRow, 0, len(ids))

	for _, id := range ids {
		row := suggestionRow{Kind: kind, ID: id}

		if ctx.Bool("apply") {
			a, err := e.svc.ApplySuggestion(ctx.Context, kind, id)
			if err != nil {
				return err
			}

			row.Assignment = a
		}

		sug, ok, err := e.svc.Suggest(ctx.Context, kind, id)
		if err != nil {
			return err
		}

		if ok {
			row.Suggestion = &sug
		}

		rows = append(rows, row)
	}

	if ctx.Bool("json") {
		return printJSON(rows)
	}

	printSuggestionsTable(config.Stdout, rows)

	return nil
}

// statsAction computes the stats for the specified time period.
func statsAction(ctx *cli.Context) error {
	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	filter, err := config.Filter(ctx, time.Now())
	if err != nil {
		return err
	}

	sessions, err := e.db.Sessions(
		ctx.Context,
		filter.User,
		filter.StartTime,
		filter.EndTime,
	)
	if err != nil {
		return err
	}

	s := stats.Compute(sessions, filter.StartTime, filter.EndTime)

	if ctx.Bool("json") {
		b, err := s.ToJSON()
		if err != nil {
			return err
		}

		fmt.Fprintln(config.Stdout, string(b))

		return nil
	}

	return s.Render(config.Stdout)
}

// editConfigAction handles the edit-config command which opens the werk
// config file in the user's default text editor.
func editConfigAction(ctx *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == osutil.Windows {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	// creates the file with defaults if it does not exist yet
	if _, err := config.New(
		config.WithViperConfig(pathutil.ConfigFilePath()),
	); err != nil {
		pterm.Warning.Println(err)
	}

	cmd := exec.CommandContext(ctx.Context, editor, pathutil.ConfigFilePath())

	cmd.Stderr = config.Stderr
	cmd.Stdin = config.Stdin
	cmd.Stdout = config.Stdout

	return cmd.Run()
}

// setupAction handles the setup command which walks through the main
// aggregation settings and saves them to the config file.
func setupAction(_ *cli.Context) error {
	_, err := config.New(
		config.WithPromptConfig(),
		config.WithViperConfig(pathutil.ConfigFilePath()),
	)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Configuration saved to %s", pathutil.ConfigFilePath())

	return nil
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if WERK_NO_COLOR is set
	if _, exists := os.LookupEnv(envWerkNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envDarkTheme); exists {
		ui.DarkTheme = true
	}

	return pathutil.Initialize()
}

func afterAction(ctx *cli.Context) error {
	slog.DebugContext(ctx.Context, "exiting werk")

	return nil
}
