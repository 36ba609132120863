package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/werk/internal/config"
	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/rules"
	"github.com/ayoisaiah/werk/internal/ui"
	"github.com/ayoisaiah/werk/service"
)

const (
	noSessionsMsg = "No sessions found for the specified time range"
	noEventsMsg   = "No events found for the specified time range"
	noRulesMsg    = "No rules found"

	dateTimeLayout = "Jan 02, 2006 03:04 PM"
	privateTitle   = "(private)"
)

// duration renders seconds as minutes and seconds.
func duration(seconds int) string {
	return fmt.Sprintf("%dm %02ds", seconds/60, seconds%60)
}

func sessionRows(sessions []models.Session) [][]string {
	rows := make([][]string, len(sessions))

	for i := range sessions {
		sess := &sessions[i]

		title := sess.WindowTitleBase
		if sess.IsPrivate {
			title = privateTitle
		}

		assigned := ui.Red("no")
		if sess.AssignmentID != 0 {
			assigned = ui.Green("yes")
		}

		rows[i] = []string{
			fmt.Sprintf("%d", sess.ID),
			sess.UserID,
			sess.ProcessName,
			title,
			sess.StartTime.Local().Format(dateTimeLayout),
			sess.EndTime.Local().Format(dateTimeLayout),
			duration(sess.ActiveDurationSeconds),
			fmt.Sprintf("%d", sess.BreakCount),
			assigned,
		}
	}

	return append([][]string{
		{"#", "USER", "PROCESS", "TITLE", "START", "END", "ACTIVE", "BREAKS", "ASSIGNED"},
	}, rows...)
}

// printSessionsTable prints a session table to the command-line.
func printSessionsTable(w io.Writer, sessions []models.Session) {
	ui.PrintTable("session", sessionRows(sessions), w)
}

// listSessions prints out a table of sessions.
func listSessions(sessions []models.Session) error {
	if len(sessions) == 0 {
		pterm.Info.Println(noSessionsMsg)
		return nil
	}

	printSessionsTable(config.Stdout, sessions)

	return nil
}

func eventRows(events []models.RawEvent) [][]string {
	rows := make([][]string, len(events))

	for i := range events {
		ev := &events[i]

		title := ev.WindowTitle
		if ev.IsPrivate {
			title = privateTitle
		}

		end := ui.Cyan("ongoing")
		if !ev.Ongoing() {
			end = ev.End.Local().Format(dateTimeLayout)
		}

		rows[i] = []string{
			fmt.Sprintf("%d", ev.ID),
			ev.UserID,
			string(ev.Source),
			ev.ProcessName,
			title,
			ev.Start.Local().Format(dateTimeLayout),
			end,
		}
	}

	return append([][]string{
		{"#", "USER", "SOURCE", "PROCESS", "TITLE", "START", "END"},
	}, rows...)
}

func ruleRows(rs []models.AssignmentRule) [][]string {
	rows := make([][]string, len(rs))

	for i := range rs {
		r := &rs[i]

		enabled := ui.Red("no")
		if r.Enabled {
			enabled = ui.Green("yes")
		}

		user := r.UserID
		if user == "" {
			user = "*"
		}

		var constraints []string

		if r.ProcessPattern != "" {
			constraints = append(constraints, "process="+r.ProcessPattern)
		}

		if r.TitleContains != "" {
			constraints = append(constraints, "contains="+r.TitleContains)
		}

		if r.TitleRegex != "" {
			constraints = append(constraints, "regex="+r.TitleRegex)
		}

		rows[i] = []string{
			fmt.Sprintf("%d", r.ID),
			r.Name,
			user,
			fmt.Sprintf("%d", r.Priority),
			strings.Join(constraints, " · "),
			fmt.Sprintf("%d", r.AutoProjectID),
			enabled,
		}
	}

	return append([][]string{
		{"#", "NAME", "USER", "PRIORITY", "MATCHES", "PROJECT", "ENABLED"},
	}, rows...)
}

func printReportsTable(w io.Writer, reports []*service.Report) {
	rows := [][]string{
		{"USER", "START", "END", "EVENTS", "SKIPPED", "SESSIONS", "REPLACED", "ASSIGNED"},
	}

	for _, r := range reports {
		rows = append(rows, []string{
			r.User,
			r.Start.Local().Format(dateTimeLayout),
			r.End.Local().Format(dateTimeLayout),
			fmt.Sprintf("%d", r.Stats.EventsConsidered),
			fmt.Sprintf("%d", r.Stats.EventsSkipped+r.EventsIgnored),
			ui.Green(len(r.Sessions)),
			fmt.Sprintf("%d", r.Removed),
			fmt.Sprintf("%d", r.Assigned),
		})
	}

	ui.PrintTable("report", rows, w)
}

// suggestionRow is the outcome of classifying one session or event.
type suggestionRow struct {
	Suggestion *rules.Suggestion  `json:"suggestion"`
	Assignment *models.Assignment `json:"assignment,omitempty"`
	Kind       models.TargetKind  `json:"kind"`
	ID         uint64             `json:"id"`
}

func printSuggestionsTable(w io.Writer, rows []suggestionRow) {
	data := [][]string{
		{"TARGET", "RULE", "PROJECT", "MILESTONE", "ACTIVITY", "COMMENT", "APPLIED"},
	}

	for _, row := range rows {
		target := fmt.Sprintf("%s %d", row.Kind, row.ID)

		if row.Suggestion == nil {
			data = append(data, []string{target, ui.Red("no match"), "", "", "", "", ""})
			continue
		}

		s := row.Suggestion

		applied := ""
		if row.Assignment != nil {
			applied = ui.Green("yes")
		}

		data = append(data, []string{
			target,
			s.RuleName,
			fmt.Sprintf("%d", s.ProjectID),
			fmt.Sprintf("%d", s.MilestoneID),
			s.Activity,
			s.Comment,
			applied,
		})
	}

	ui.PrintTable("suggestion", data, w)
}
