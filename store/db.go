package store

import (
	"context"
	"time"

	"github.com/ayoisaiah/werk/internal/models"
)

// DB is the database storage interface.
type DB interface {
	// AddEvents stores raw events. Events without an id are assigned one;
	// events with a known id replace the stored copy. It returns the number
	// of events that did not exist before.
	AddEvents(ctx context.Context, events []models.RawEvent) (int, error)
	// Events returns the events of user that start within [start, end],
	// ordered by start time
	Events(
		ctx context.Context,
		user string,
		start, end time.Time,
	) ([]models.RawEvent, error)
	// Event returns a single event by id
	Event(ctx context.Context, id uint64) (*models.RawEvent, error)
	// Users returns every user that has at least one event
	Users(ctx context.Context) ([]string, error)
	// Sessions returns the sessions that start within [start, end]. An empty
	// user returns sessions of all users
	Sessions(
		ctx context.Context,
		user string,
		start, end time.Time,
	) ([]models.Session, error)
	// Session returns a single session by id
	Session(ctx context.Context, id uint64) (*models.Session, error)
	// ReplaceSessions deletes the sessions of user that start within
	// [start, end]
	// and stores sessions in their place within a single transaction. The
	// stored sessions are returned with their ids.
	ReplaceSessions(
		ctx context.Context,
		user string,
		start, end time.Time,
		sessions []models.Session,
	) (stored []models.Session, removed int, err error)
	// DeleteSessions deletes the sessions of user that start within
	// [start, end]. An empty user deletes the sessions of all users
	DeleteSessions(
		ctx context.Context,
		user string,
		start, end time.Time,
	) (int, error)
	// Rules returns every assignment rule ordered by id
	Rules(ctx context.Context) ([]models.AssignmentRule, error)
	// SaveRule creates the rule if its id is zero, or overwrites it
	SaveRule(ctx context.Context, rule *models.AssignmentRule) error
	// DeleteRule deletes a rule by id
	DeleteRule(ctx context.Context, id uint64) error
	// SaveAssignment stores an assignment and links it to its target,
	// replacing any previous assignment of that target
	SaveAssignment(ctx context.Context, a *models.Assignment) error
	// Assignment returns a single assignment by id
	Assignment(ctx context.Context, id uint64) (*models.Assignment, error)
	// Close ends the database connection
	Close() error
}

var _ DB = (*Client)(nil)
