// Package aggregate merges a chronological batch of raw activity events into
// sessions.
package aggregate

import (
	"slices"
	"time"

	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/title"
)

// Reason explains why an event was left out of aggregation.
type Reason string

const (
	ReasonOngoing        Reason = "ongoing"
	ReasonEndBeforeStart Reason = "end_before_start"
	ReasonTooShort       Reason = "too_short"
)

// Diagnostic records an event that was skipped.
type Diagnostic struct {
	Reason  Reason `json:"reason"`
	EventID uint64 `json:"event_id"`
	// Index is the position of the event in the input slice
	Index int `json:"index"`
}

// Stats summarizes an aggregation run so that callers can tell an empty
// input apart from a fully filtered one.
type Stats struct {
	EventsConsidered int `json:"events_considered"`
	EventsSkipped    int `json:"events_skipped"`
	SessionsEmitted  int `json:"sessions_emitted"`
	SessionsDropped  int `json:"sessions_dropped"`
}

// Result is the output of Aggregate.
type Result struct {
	Sessions    []models.Session `json:"sessions"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
	Stats       Stats            `json:"stats"`
}

// accumulator is the session currently being built.
type accumulator struct {
	sess   models.Session
	active time.Duration
}

type indexedEvent struct {
	*models.RawEvent
	index int
}

// Aggregate groups events into sessions with a single forward pass. Events
// are stable-sorted by start time first; the input slice is not modified.
// Malformed events are skipped and reported in Result.Diagnostics. An error
// is returned only for an invalid cfg.
func Aggregate(events []models.RawEvent, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Sessions: []models.Session{},
	}

	res.Stats.EventsConsidered = len(events)

	sorted := make([]indexedEvent, len(events))
	for i := range events {
		sorted[i] = indexedEvent{&events[i], i}
	}

	slices.SortStableFunc(sorted, func(a, b indexedEvent) int {
		return a.Start.Compare(b.Start)
	})

	var open *accumulator

	for _, ev := range sorted {
		if reason, ok := skipReason(ev.RawEvent, &cfg); ok {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Reason:  reason,
				EventID: ev.ID,
				Index:   ev.index,
			})
			res.Stats.EventsSkipped++

			continue
		}

		normalized := cfg.normalize(ev.WindowTitle)

		if open != nil && open.accepts(ev.RawEvent, normalized, &cfg) {
			open.add(ev.RawEvent, &cfg)
			continue
		}

		res.close(open, &cfg)

		open = newAccumulator(ev.RawEvent, normalized)
	}

	res.close(open, &cfg)

	return res, nil
}

func skipReason(ev *models.RawEvent, cfg *Config) (Reason, bool) {
	switch {
	case ev.Ongoing():
		return ReasonOngoing, true
	case ev.End.Before(ev.Start):
		return ReasonEndBeforeStart, true
	case ev.Duration() < cfg.minEvent():
		return ReasonTooShort, true
	}

	return "", false
}

func newAccumulator(ev *models.RawEvent, normalized string) *accumulator {
	return &accumulator{
		sess: models.Session{
			UserID:          ev.UserID,
			ProcessName:     ev.ProcessName,
			WindowTitleBase: normalized,
			StartTime:       ev.Start,
			EndTime:         ev.End,
			EventIDs:        []uint64{ev.ID},
			EventCount:      1,
			IsPrivate:       ev.IsPrivate,
		},
		active: ev.Duration(),
	}
}

// accepts reports whether ev may join the open session. A missing title on
// either side never blocks a merge.
func (a *accumulator) accepts(
	ev *models.RawEvent,
	normalized string,
	cfg *Config,
) bool {
	if ev.ProcessName != a.sess.ProcessName || ev.UserID != a.sess.UserID {
		return false
	}

	if ev.Start.Sub(a.sess.EndTime) > cfg.maxBreak() {
		return false
	}

	if normalized == "" || a.sess.WindowTitleBase == "" {
		return true
	}

	return title.Ratio(a.sess.WindowTitleBase, normalized) >= cfg.MinTitleSimilarity
}

// add merges ev into the session. Time already covered by the session is
// not counted as active twice, so active time never exceeds the span.
func (a *accumulator) add(ev *models.RawEvent, cfg *Config) {
	gap := ev.Start.Sub(a.sess.EndTime)

	if gap > cfg.breakThreshold() {
		a.sess.BreakCount++
	}

	from := ev.Start
	if from.Before(a.sess.EndTime) {
		from = a.sess.EndTime
	}

	if ev.End.After(from) {
		a.active += ev.End.Sub(from)
	}

	if ev.End.After(a.sess.EndTime) {
		a.sess.EndTime = ev.End
	}

	a.sess.EventCount++
	a.sess.EventIDs = append(a.sess.EventIDs, ev.ID)
	a.sess.IsPrivate = a.sess.IsPrivate || ev.IsPrivate
}

// close emits the session if it is long enough, or counts it as dropped.
func (r *Result) close(a *accumulator, cfg *Config) {
	if a == nil {
		return
	}

	if a.sess.Span() < cfg.minSession() {
		r.Stats.SessionsDropped++
		return
	}

	a.sess.ActiveDurationSeconds = int(a.active / time.Second)

	r.Sessions = append(r.Sessions, a.sess)
	r.Stats.SessionsEmitted++
}
