package app

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/werk/internal/apperr"
	"github.com/ayoisaiah/werk/internal/config"
	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/ui"
)

// maxLineSize bounds a single JSON line of the capture output.
const maxLineSize = 1 << 20

var errDecodeEvent = &apperr.Error{
	Message: "line %d: invalid event",
}

// readEvents decodes one JSON event per line. Blank lines are skipped and
// events without a source are window events.
func readEvents(r io.Reader) ([]models.RawEvent, error) {
	var events []models.RawEvent

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	var line int

	for scanner.Scan() {
		line++

		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}

		var ev models.RawEvent

		if err := json.Unmarshal(b, &ev); err != nil {
			return nil, errDecodeEvent.Fmt(line).Wrap(err)
		}

		if ev.Source == "" {
			ev.Source = models.SourceWindow
		}

		events = append(events, ev)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// openInput returns the file named by --file, or standard input.
func openInput(ctx *cli.Context) (io.ReadCloser, error) {
	path := ctx.String("file")
	if path == "" || path == "-" {
		return io.NopCloser(config.Stdin), nil
	}

	return os.Open(path)
}

// importEventsAction handles the events import command which stores the
// JSON lines written by the activity collector.
func importEventsAction(ctx *cli.Context) error {
	in, err := openInput(ctx)
	if err != nil {
		return err
	}

	defer in.Close()

	events, err := readEvents(in)
	if err != nil {
		return err
	}

	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	added, err := e.db.AddEvents(ctx.Context, events)
	if err != nil {
		return err
	}

	pterm.Success.Printfln(
		"%d event(s) imported, %d updated",
		added,
		len(events)-added,
	)

	return nil
}

// listEventsAction handles the events list command.
func listEventsAction(ctx *cli.Context) error {
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

	var events []models.RawEvent

	for _, u := range users {
		evs, err := e.db.Events(ctx.Context, u, filter.StartTime, filter.EndTime)
		if err != nil {
			return err
		}

		events = append(events, evs...)
	}

	if ctx.Bool("json") {
		return printJSON(events)
	}

	if len(events) == 0 {
		pterm.Info.Println(noEventsMsg)
		return nil
	}

	ui.PrintTable("event", eventRows(events), config.Stdout)

	return nil
}
