package aggregate

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/testutil"
)

// at returns 2024-03-04 at the given clock time in UTC.
func at(hour, minute, sec int) time.Time {
	return time.Date(2024, time.March, 4, hour, minute, sec, 0, time.UTC)
}

func event(id uint64, process, windowTitle string, start, end time.Time) models.RawEvent {
	return models.RawEvent{
		ID:          id,
		UserID:      "u1",
		Source:      models.SourceWindow,
		ProcessName: process,
		WindowTitle: windowTitle,
		Start:       start,
		End:         end,
	}
}

func mustAggregate(t *testing.T, events []models.RawEvent, cfg Config) *Result {
	t.Helper()

	res, err := Aggregate(events, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return res
}

func TestAggregateMergesSimilarTitles(t *testing.T) {
	events := []models.RawEvent{
		event(1, "acad.exe", "Drawing1.dwg", at(9, 0, 0), at(9, 20, 0)),
		event(2, "acad.exe", "Drawing1 - v2.dwg", at(9, 22, 0), at(9, 50, 0)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	want := []models.Session{
		{
			UserID:                "u1",
			ProcessName:           "acad.exe",
			WindowTitleBase:       "drawing1.dwg",
			StartTime:             at(9, 0, 0),
			EndTime:               at(9, 50, 0),
			EventIDs:              []uint64{1, 2},
			ActiveDurationSeconds: 2880,
			BreakCount:            1,
			EventCount:            2,
		},
	}

	if diff := cmp.Diff(want, res.Sessions); diff != "" {
		t.Errorf("sessions mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateSplitsOnLongGap(t *testing.T) {
	events := []models.RawEvent{
		event(1, "acad.exe", "Drawing1.dwg", at(9, 0, 0), at(9, 20, 0)),
		event(2, "acad.exe", "Drawing1 - v2.dwg", at(9, 40, 0), at(9, 50, 0)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	if len(res.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, but got %d", len(res.Sessions))
	}

	for i, sess := range res.Sessions {
		if sess.EventCount != 1 || sess.BreakCount != 0 {
			t.Errorf(
				"session %d: expected a single event without breaks, got %d events and %d breaks",
				i,
				sess.EventCount,
				sess.BreakCount,
			)
		}
	}
}

func TestAggregateDropsShortSessions(t *testing.T) {
	events := []models.RawEvent{
		event(1, "acad.exe", "Drawing1.dwg", at(9, 0, 0), at(9, 1, 30)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	if len(res.Sessions) != 0 {
		t.Fatalf("expected no sessions, but got %d", len(res.Sessions))
	}

	want := Stats{
		EventsConsidered: 1,
		SessionsDropped:  1,
	}

	if diff := cmp.Diff(want, res.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	res := mustAggregate(t, nil, DefaultConfig())

	if res.Sessions == nil || len(res.Sessions) != 0 {
		t.Errorf("expected an empty, non-nil session list, got %#v", res.Sessions)
	}

	if res.Stats != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", res.Stats)
	}
}

func TestAggregateSortsInput(t *testing.T) {
	events := []models.RawEvent{
		event(2, "acad.exe", "Drawing1.dwg", at(9, 10, 0), at(9, 20, 0)),
		event(1, "acad.exe", "Drawing1.dwg", at(9, 0, 0), at(9, 10, 0)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	if len(res.Sessions) != 1 {
		t.Fatalf("expected 1 session, but got %d", len(res.Sessions))
	}

	if diff := cmp.Diff([]uint64{1, 2}, res.Sessions[0].EventIDs); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}

	// input order is left alone
	if events[0].ID != 2 {
		t.Error("expected the input slice not to be reordered")
	}
}

func TestAggregateStableOnEqualStart(t *testing.T) {
	events := []models.RawEvent{
		event(7, "acad.exe", "a.dwg", at(9, 0, 0), at(9, 5, 0)),
		event(3, "acad.exe", "a.dwg", at(9, 0, 0), at(9, 6, 0)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	if diff := cmp.Diff([]uint64{7, 3}, res.Sessions[0].EventIDs); diff != "" {
		t.Errorf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateSplitsOnProcessAndTitle(t *testing.T) {
	events := []models.RawEvent{
		event(1, "acad.exe", "Drawing1.dwg", at(9, 0, 0), at(9, 10, 0)),
		event(2, "chrome.exe", "Drawing1.dwg", at(9, 10, 0), at(9, 20, 0)),
		event(3, "chrome.exe", "Quarterly budget review", at(9, 20, 0), at(9, 30, 0)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	if len(res.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, but got %d", len(res.Sessions))
	}
}

func TestAggregateMissingTitleNeverBlocksMerge(t *testing.T) {
	events := []models.RawEvent{
		event(1, "teams.exe", "Weekly sync", at(9, 0, 0), at(9, 10, 0)),
		event(2, "teams.exe", "", at(9, 10, 30), at(9, 20, 0)),
		event(3, "teams.exe", "Completely different", at(9, 20, 0), at(9, 30, 0)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	// the empty title merges; the dissimilar one is compared against the
	// first title and splits
	if len(res.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, but got %d", len(res.Sessions))
	}

	if res.Sessions[0].EventCount != 2 {
		t.Errorf("expected 2 events in the first session, got %d", res.Sessions[0].EventCount)
	}

	if res.Sessions[0].BreakCount != 0 {
		t.Errorf("expected a 30 second gap not to count as a break")
	}
}

func TestAggregateEmptyFirstTitleAcceptsAny(t *testing.T) {
	events := []models.RawEvent{
		event(1, "teams.exe", "", at(9, 0, 0), at(9, 10, 0)),
		event(2, "teams.exe", "Weekly sync", at(9, 10, 0), at(9, 20, 0)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	if len(res.Sessions) != 1 || res.Sessions[0].WindowTitleBase != "" {
		t.Fatalf("expected one session titled after its first event, got %+v", res.Sessions)
	}
}

func TestAggregateSkipsMalformedEvents(t *testing.T) {
	events := []models.RawEvent{
		event(1, "acad.exe", "a.dwg", at(9, 0, 0), at(9, 10, 0)),
		event(2, "acad.exe", "a.dwg", at(9, 12, 0), at(9, 11, 0)),
		event(3, "acad.exe", "a.dwg", at(9, 13, 0), time.Time{}),
	}

	res := mustAggregate(t, events, DefaultConfig())

	want := []Diagnostic{
		{Reason: ReasonEndBeforeStart, EventID: 2, Index: 1},
		{Reason: ReasonOngoing, EventID: 3, Index: 2},
	}

	if diff := cmp.Diff(want, res.Diagnostics); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	if res.Stats.EventsSkipped != 2 || res.Stats.SessionsEmitted != 1 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
}

func TestAggregateMinEventDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinEventDurationSeconds = 10

	events := []models.RawEvent{
		event(1, "acad.exe", "a.dwg", at(9, 0, 0), at(9, 0, 5)),
		event(2, "acad.exe", "a.dwg", at(9, 1, 0), at(9, 5, 0)),
	}

	res := mustAggregate(t, events, cfg)

	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Reason != ReasonTooShort {
		t.Fatalf("expected the 5 second event to be skipped, got %+v", res.Diagnostics)
	}

	if res.Sessions[0].StartTime != at(9, 1, 0) {
		t.Errorf("expected the session to start with the second event")
	}
}

func TestAggregateOverlapCountsActiveOnce(t *testing.T) {
	events := []models.RawEvent{
		event(1, "acad.exe", "a.dwg", at(9, 0, 0), at(9, 10, 0)),
		event(2, "acad.exe", "a.dwg", at(9, 5, 0), at(9, 8, 0)),
		event(3, "acad.exe", "a.dwg", at(9, 9, 0), at(9, 15, 0)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	sess := res.Sessions[0]

	if sess.EndTime != at(9, 15, 0) {
		t.Errorf("expected end time 09:15, got %s", sess.EndTime)
	}

	if sess.ActiveDurationSeconds != 15*60 {
		t.Errorf("expected 900 active seconds, got %d", sess.ActiveDurationSeconds)
	}
}

func TestAggregateBreakThreshold(t *testing.T) {
	events := []models.RawEvent{
		event(1, "acad.exe", "a.dwg", at(9, 0, 0), at(9, 10, 0)),
		// exactly 60 seconds is not a break
		event(2, "acad.exe", "a.dwg", at(9, 11, 0), at(9, 20, 0)),
		event(3, "acad.exe", "a.dwg", at(9, 21, 1), at(9, 30, 0)),
		// exactly 5 minutes still merges
		event(4, "acad.exe", "a.dwg", at(9, 35, 0), at(9, 40, 0)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	if len(res.Sessions) != 1 {
		t.Fatalf("expected 1 session, but got %d", len(res.Sessions))
	}

	if res.Sessions[0].BreakCount != 2 {
		t.Errorf("expected 2 breaks, got %d", res.Sessions[0].BreakCount)
	}
}

func TestAggregatePrivacyIsSticky(t *testing.T) {
	events := []models.RawEvent{
		event(1, "acad.exe", "a.dwg", at(9, 0, 0), at(9, 10, 0)),
		event(2, "acad.exe", "a.dwg", at(9, 10, 0), at(9, 20, 0)),
	}
	events[1].IsPrivate = true

	res := mustAggregate(t, events, DefaultConfig())

	if !res.Sessions[0].IsPrivate {
		t.Error("expected a session containing a private event to be private")
	}
}

// Two adjacent events that satisfy the merge predicate end up together no
// matter which events come before or after them.
func TestAggregateMergeMonotonicity(t *testing.T) {
	a := event(10, "acad.exe", "Site plan.dwg", at(11, 0, 0), at(11, 20, 0))
	b := event(11, "acad.exe", "Site plan (v2).dwg", at(11, 24, 0), at(11, 40, 0))

	surroundings := [][]models.RawEvent{
		nil,
		{event(1, "acad.exe", "Site plan.dwg", at(10, 50, 0), at(10, 58, 0))},
		{event(1, "chrome.exe", "Mail", at(10, 0, 0), at(10, 59, 0))},
		{event(1, "acad.exe", "Other.dwg", at(10, 0, 0), at(10, 59, 0))},
		{
			event(1, "chrome.exe", "Mail", at(10, 0, 0), at(10, 59, 0)),
			event(2, "acad.exe", "Site plan.dwg", at(11, 41, 0), at(11, 50, 0)),
			event(3, "excel.exe", "Budget", at(12, 0, 0), at(12, 30, 0)),
		},
	}

	for i, extra := range surroundings {
		events := append([]models.RawEvent{a, b}, extra...)

		res := mustAggregate(t, events, DefaultConfig())

		found := false

		for _, sess := range res.Sessions {
			hasA, hasB := false, false

			for _, id := range sess.EventIDs {
				hasA = hasA || id == a.ID
				hasB = hasB || id == b.ID
			}

			if hasA != hasB {
				t.Fatalf("case %d: events were split across sessions", i)
			}

			found = found || (hasA && hasB)
		}

		if !found {
			t.Errorf("case %d: expected both events in one emitted session", i)
		}
	}
}

func TestAggregateInvariants(t *testing.T) {
	events := []models.RawEvent{
		event(1, "acad.exe", "a.dwg", at(8, 0, 0), at(8, 30, 0)),
		event(2, "acad.exe", "a.dwg", at(8, 20, 0), at(8, 40, 0)),
		event(3, "acad.exe", "a.dwg", at(8, 43, 0), at(9, 0, 0)),
		event(4, "chrome.exe", "news", at(9, 0, 0), at(9, 30, 0)),
		event(5, "chrome.exe", "news", at(9, 40, 0), at(9, 50, 0)),
	}

	cfg := DefaultConfig()

	res := mustAggregate(t, events, cfg)

	for _, sess := range res.Sessions {
		if sess.EndTime.Before(sess.StartTime) {
			t.Errorf("session %v ends before it starts", sess.EventIDs)
		}

		if time.Duration(sess.ActiveDurationSeconds)*time.Second > sess.Span() {
			t.Errorf("session %v is active longer than its span", sess.EventIDs)
		}

		if sess.Span() < time.Duration(cfg.MinSessionDurationSeconds)*time.Second {
			t.Errorf("session %v is shorter than the minimum", sess.EventIDs)
		}
	}
}

type configTest struct {
	Name   string
	Mutate func(*Config)
}

var invalidConfigCases = []configTest{
	{
		Name:   "negative merge gap",
		Mutate: func(c *Config) { c.MaxBreakMinutes = -1 },
	},
	{
		Name:   "negative minimum duration",
		Mutate: func(c *Config) { c.MinSessionDurationSeconds = -120 },
	},
	{
		Name:   "negative break threshold",
		Mutate: func(c *Config) { c.BreakThresholdSeconds = -1 },
	},
	{
		Name:   "similarity above one",
		Mutate: func(c *Config) { c.MinTitleSimilarity = 1.5 },
	},
	{
		Name:   "similarity not a number",
		Mutate: func(c *Config) { c.MinTitleSimilarity = math.NaN() },
	},
}

func TestAggregateRejectsInvalidConfig(t *testing.T) {
	for _, tc := range invalidConfigCases {
		t.Run(tc.Name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.Mutate(&cfg)

			_, err := Aggregate(nil, cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

type goldenTest struct {
	GoldenFile string
	Snapshot   []byte
}

func (g goldenTest) Output() (out []byte, name string) {
	return g.Snapshot, g.GoldenFile
}

func TestAggregateWorkdaySnapshot(t *testing.T) {
	events := []models.RawEvent{
		event(1, "acad.exe", "Drawing1.dwg - AutoCAD 2024", at(9, 0, 0), at(9, 20, 0)),
		event(2, "acad.exe", "Drawing1 - v2.dwg - AutoCAD 2024", at(9, 22, 0), at(9, 50, 0)),
		event(3, "chrome.exe", "Inbox (3) - Google Chrome", at(9, 50, 0), at(9, 51, 0)),
		event(4, "outlook.exe", "", at(10, 0, 0), time.Time{}),
		event(5, "winword.exe", "Offer.docx - Word", at(10, 5, 0), at(10, 30, 0)),
	}

	res := mustAggregate(t, events, DefaultConfig())

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		t.Fatal(err)
	}

	testutil.CompareGoldenFile(t, goldenTest{
		GoldenFile: "workday",
		Snapshot:   append(b, '\n'),
	})
}
