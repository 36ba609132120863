// Package service recomputes sessions from stored events and classifies them
// against the stored assignment rules.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ayoisaiah/werk/internal/aggregate"
	"github.com/ayoisaiah/werk/internal/config"
	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/rules"
	"github.com/ayoisaiah/werk/store"
)

// Report describes the outcome of one recompute.
type Report struct {
	Start       time.Time              `json:"start"`
	End         time.Time              `json:"end"`
	User        string                 `json:"user"`
	Sessions    []models.Session       `json:"sessions"`
	Diagnostics []aggregate.Diagnostic `json:"diagnostics,omitempty"`
	Stats       aggregate.Stats        `json:"stats"`
	// EventsIgnored counts events from sources that are not aggregated
	EventsIgnored int `json:"events_ignored"`
	Removed       int `json:"sessions_removed"`
	Assigned      int `json:"sessions_assigned"`
}

// Service ties the store to the aggregator and the rules engine.
type Service struct {
	db      store.DB
	cfg     *config.Config
	matcher *rules.Matcher
	engine  *rules.Engine
	logger  *slog.Logger
	locks   *keyedMutex
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for diagnostics and rule warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New returns a Service backed by db and configured by cfg.
func New(db store.DB, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		db:     db,
		cfg:    cfg,
		logger: slog.Default(),
		locks:  newKeyedMutex(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.matcher = rules.NewMatcher(cfg.Rules.CacheSize, s.logger)
	s.engine = rules.NewEngine(s.matcher)

	return s
}

// lockKey serializes the recomputes of one user. Two ranges of the same user
// may overlap, so the range is not part of the key.
func lockKey(user string) string {
	return "user:" + user
}

// windowEvents returns the events that take part in aggregation. Events
// without a source predate the source field and are window events.
func windowEvents(events []models.RawEvent) (window []models.RawEvent, ignored int) {
	window = make([]models.RawEvent, 0, len(events))

	for i := range events {
		switch events[i].Source {
		case models.SourceWindow, "":
			window = append(window, events[i])
		default:
			ignored++
		}
	}

	return window, ignored
}

// Recompute rebuilds the sessions of user in [start, end] from the stored
// events. Sessions that start within the range are replaced; when
// rules.auto_apply is set every new session is classified. A zero range
// covers config.DefaultLookback ending now; a zero start alone reaches back
// to the first stored event.
func (s *Service) Recompute(
	ctx context.Context,
	user string,
	start, end time.Time,
) (*Report, error) {
	if user == "" {
		return nil, errUserRequired
	}

	if start.IsZero() && end.IsZero() {
		end = s.now()
		start = end.Add(-config.DefaultLookback)
	}

	if start.After(end) {
		return nil, errInvalidRange.Fmt(
			start.Format(time.RFC3339),
			end.Format(time.RFC3339),
		)
	}

	unlock := s.locks.Lock(lockKey(user))
	defer unlock()

	events, err := s.db.Events(ctx, user, start, end)
	if err != nil {
		return nil, errLoadEvents.Fmt(user).Wrap(err)
	}

	window, ignored := windowEvents(events)

	res, err := aggregate.Aggregate(window, s.cfg.AggregateConfig())
	if err != nil {
		return nil, errAggregate.Fmt(user).Wrap(err)
	}

	for _, d := range res.Diagnostics {
		s.logger.DebugContext(
			ctx,
			"event skipped",
			slog.String("user", user),
			slog.Uint64("event_id", d.EventID),
			slog.String("reason", string(d.Reason)),
		)
	}

	stored, removed, err := s.db.ReplaceSessions(ctx, user, start, end, res.Sessions)
	if err != nil {
		return nil, errStoreSessions.Fmt(user).Wrap(err)
	}

	report := &Report{
		User:          user,
		Start:         start,
		End:           end,
		Sessions:      stored,
		Diagnostics:   res.Diagnostics,
		Stats:         res.Stats,
		EventsIgnored: ignored,
		Removed:       removed,
	}

	if s.cfg.Rules.AutoApply {
		report.Assigned, err = s.applyRules(ctx, report.Sessions)
		if err != nil {
			return report, err
		}
	}

	s.logger.InfoContext(
		ctx,
		"sessions recomputed",
		slog.String("user", user),
		slog.Time("start", start),
		slog.Time("end", end),
		slog.Int("events", len(events)),
		slog.Int("sessions", len(stored)),
		slog.Int("removed", removed),
		slog.Int("assigned", report.Assigned),
	)

	if err := s.runHook(ctx, report); err != nil {
		// sessions are committed at this point
		s.logger.ErrorContext(
			ctx,
			"after_aggregate hook failed",
			slog.String("user", user),
			slog.Any("error", err),
		)
	}

	return report, nil
}

// applyRules classifies each session and stores an assignment for every
// match. The rules are loaded once per call.
func (s *Service) applyRules(
	ctx context.Context,
	sessions []models.Session,
) (int, error) {
	if len(sessions) == 0 {
		return 0, nil
	}

	rs, err := s.db.Rules(ctx)
	if err != nil {
		return 0, err
	}

	if len(rs) == 0 {
		return 0, nil
	}

	var assigned int

	for i := range sessions {
		sess := &sessions[i]

		sug, ok := s.engine.Suggest(sess, rs)
		if !ok {
			continue
		}

		a := sug.Assignment(models.TargetSession, sess.ID)

		if err := s.db.SaveAssignment(ctx, &a); err != nil {
			return assigned, errApplyRules.Fmt(sess.ID).Wrap(err)
		}

		sess.AssignmentID = a.ID
		assigned++
	}

	return assigned, nil
}
