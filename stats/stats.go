// Package stats reports totals over recomputed sessions.
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/timeutil"
	"github.com/ayoisaiah/werk/internal/ui"
)

const (
	barChartChar  = "▇"
	noSessionsMsg = "No sessions found for the specified time range"
	// privateKey replaces the process name of private sessions
	privateKey = "(private)"
	dayLayout  = "2006-01-02"
	monthLen   = len("2006-01")
)

// Total is the time spent on one process, user or day.
type Total struct {
	Key           string `json:"key"`
	ActiveSeconds int    `json:"active_seconds"`
	Sessions      int    `json:"sessions"`
}

// Stats summarizes the sessions of a reporting period.
type Stats struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Users         []Total   `json:"users"`
	Processes     []Total   `json:"processes"`
	Days          []Total   `json:"days"`
	ActiveSeconds int       `json:"active_seconds"`
	Sessions      int       `json:"sessions"`
	Breaks        int       `json:"breaks"`
	Assigned      int       `json:"assigned"`
}

type totals map[string]*Total

func (t totals) add(key string, sess *models.Session) {
	v, ok := t[key]
	if !ok {
		v = &Total{Key: key}
		t[key] = v
	}

	v.ActiveSeconds += sess.ActiveDurationSeconds
	v.Sessions++
}

func (t totals) slice() []Total {
	s := make([]Total, 0, len(t))
	for _, v := range t {
		s = append(s, *v)
	}

	return s
}

// Compute totals sessions over [start, end]. A session counts towards the
// day it started on, in the location of end. A zero start means all time and
// is replaced by the day of the earliest session.
func Compute(sessions []models.Session, start, end time.Time) *Stats {
	loc := end.Location()

	s := &Stats{
		StartTime: start,
		EndTime:   end,
	}

	if s.StartTime.IsZero() && len(sessions) > 0 {
		first := slices.MinFunc(sessions, func(a, b models.Session) int {
			return a.StartTime.Compare(b.StartTime)
		})

		s.StartTime = timeutil.RoundToStart(first.StartTime.In(loc))
	}

	users := make(totals)
	processes := make(totals)
	days := make(totals)

	if !s.StartTime.IsZero() {
		for d := timeutil.RoundToStart(s.StartTime.In(loc)); !d.After(end); d = d.AddDate(0, 0, 1) {
			days[d.Format(dayLayout)] = &Total{Key: d.Format(dayLayout)}
		}
	}

	for i := range sessions {
		sess := &sessions[i]

		s.ActiveSeconds += sess.ActiveDurationSeconds
		s.Sessions++
		s.Breaks += sess.BreakCount

		if sess.AssignmentID != 0 {
			s.Assigned++
		}

		process := sess.ProcessName
		if sess.IsPrivate {
			process = privateKey
		}

		users.add(sess.UserID, sess)
		processes.add(process, sess)
		days.add(sess.StartTime.In(loc).Format(dayLayout), sess)
	}

	s.Users = users.slice()
	slices.SortFunc(s.Users, func(a, b Total) int {
		return compareNatural(a.Key, b.Key)
	})

	s.Processes = processes.slice()
	slices.SortFunc(s.Processes, func(a, b Total) int {
		if a.ActiveSeconds != b.ActiveSeconds {
			return b.ActiveSeconds - a.ActiveSeconds
		}

		return compareNatural(a.Key, b.Key)
	})

	s.Days = days.slice()
	slices.SortFunc(s.Days, func(a, b Total) int {
		return strings.Compare(a.Key, b.Key)
	})

	return s
}

func compareNatural(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	default:
		return 0
	}
}

// ToJSON returns the JSON encoding of s.
func (s *Stats) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// formatDuration renders seconds as hours and minutes.
func formatDuration(seconds int) string {
	hrs, mins := timeutil.MinsToHoursAndMins(
		timeutil.Round(float64(seconds) / float64(time.Minute/time.Second)),
	)

	if hrs == 0 {
		return fmt.Sprintf("%dm", mins)
	}

	return fmt.Sprintf("%dh %02dm", hrs, mins)
}

// months folds the daily totals into calendar months.
func (s *Stats) months() []Total {
	var months []Total

	for _, d := range s.Days {
		key := d.Key[:monthLen]

		if len(months) == 0 || months[len(months)-1].Key != key {
			months = append(months, Total{Key: key})
		}

		m := &months[len(months)-1]
		m.ActiveSeconds += d.ActiveSeconds
		m.Sessions += d.Sessions
	}

	return months
}

func getBarChart(data []Total, title string) string {
	if len(data) == 0 {
		return ""
	}

	header := ui.Blue(fmt.Sprintf("\n%s breakdown (minutes)", title))

	bars := make(pterm.Bars, 0, len(data))

	for _, v := range data {
		bars = append(bars, pterm.Bar{
			Label: v.Key,
			Value: timeutil.Round(float64(v.ActiveSeconds) / 60),
		})
	}

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return ""
	}

	return header + chart
}

func getTable(title, column string, data []Total) string {
	rows := [][]string{
		{column, "SESSIONS", "ACTIVE"},
	}

	for _, v := range data {
		rows = append(rows, []string{
			v.Key,
			fmt.Sprintf("%d", v.Sessions),
			formatDuration(v.ActiveSeconds),
		})
	}

	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", ui.Blue(title))
	ui.PrintTable(strings.ToLower(title), rows, &b)

	return b.String()
}

// getSummary retrieves the totals for the reporting period.
func (s *Stats) getSummary() string {
	header := fmt.Sprintf("%s\n", ui.Blue("Summary"))

	active := fmt.Sprintf(
		"Active time: %s\n",
		ui.Green(formatDuration(s.ActiveSeconds)),
	)

	sessions := fmt.Sprintln("Sessions:", ui.Green(s.Sessions))

	breaks := fmt.Sprintln("Breaks:", ui.Green(s.Breaks))

	assigned := fmt.Sprintln(
		"Assigned:",
		ui.Green(fmt.Sprintf("%d/%d", s.Assigned, s.Sessions)),
	)

	return header + active + sessions + breaks + assigned
}

// Render writes the human-readable report to w.
func (s *Stats) Render(w io.Writer) error {
	if s.Sessions == 0 {
		pterm.Info.Println(noSessionsMsg)
		return nil
	}

	reportingStart := s.StartTime.Format("January 02, 2006")
	reportingEnd := s.EndTime.Format("January 02, 2006")
	timePeriod := "Reporting period: " + reportingStart + " - " + reportingEnd

	header := pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprintln(timePeriod)

	var users string
	if len(s.Users) > 1 {
		users = getTable("Users", "USER", s.Users)
	}

	var history string

	if s.ActiveSeconds > 0 {
		hoursDiff := timeutil.Round(s.EndTime.Sub(s.StartTime).Hours())

		if hoursDiff <= timeutil.MaxHoursInAMonth {
			history = getBarChart(s.Days, "Daily")
		} else {
			history = getBarChart(s.months(), "Monthly")
		}
	}

	output := fmt.Sprint(
		header,
		s.getSummary(),
		getTable("Processes", "PROCESS", s.Processes),
		users,
		history,
	)

	_, err := fmt.Fprintln(w, strings.TrimSpace(output))

	return err
}
