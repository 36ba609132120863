// Package models defines the records shared by the aggregator, the rules
// engine and the store.
package models

import (
	"time"
)

// Source identifies the capture channel that produced an event.
type Source string

const (
	SourceWindow Source = "window"
	SourcePhone  Source = "phone"
)

// TargetKind distinguishes assignments made to sessions and to events.
type TargetKind string

const (
	TargetSession TargetKind = "session"
	TargetEvent   TargetKind = "event"
)

// RawEvent is a single captured activity record. A zero End means the event
// is still ongoing.
type RawEvent struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Source      Source    `json:"source"`
	ProcessName string    `json:"process_name"`
	WindowTitle string    `json:"window_title"`
	UserID      string    `json:"user_id"`
	ID          uint64    `json:"id"`
	IsPrivate   bool      `json:"is_private"`
}

// Ongoing reports whether the event has not ended yet.
func (e *RawEvent) Ongoing() bool {
	return e.End.IsZero()
}

// Duration returns the length of a completed event.
func (e *RawEvent) Duration() time.Duration {
	if e.Ongoing() {
		return 0
	}

	return e.End.Sub(e.Start)
}

func (e *RawEvent) TargetUser() string    { return e.UserID }
func (e *RawEvent) TargetProcess() string { return e.ProcessName }
func (e *RawEvent) TargetTitle() string   { return e.WindowTitle }

// Session is a contiguous period of activity on one process, derived from
// one or more raw events.
type Session struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	UserID    string    `json:"user_id"`
	// ProcessName is shared by every event in the session
	ProcessName string `json:"process_name"`
	// WindowTitleBase is the normalized title of the first event
	WindowTitleBase string   `json:"window_title_base"`
	EventIDs        []uint64 `json:"event_ids"`
	// ActiveDurationSeconds excludes the gaps between events
	ActiveDurationSeconds int    `json:"active_duration_seconds"`
	BreakCount            int    `json:"break_count"`
	EventCount            int    `json:"event_count"`
	ID                    uint64 `json:"id"`
	AssignmentID          uint64 `json:"assignment_id,omitempty"`
	IsPrivate             bool   `json:"is_private"`
}

// Span returns the wall-clock length of the session.
func (s *Session) Span() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

func (s *Session) TargetUser() string    { return s.UserID }
func (s *Session) TargetProcess() string { return s.ProcessName }
func (s *Session) TargetTitle() string   { return s.WindowTitleBase }

// AssignmentRule maps process and title patterns to a classification. An
// empty UserID applies the rule to every user.
type AssignmentRule struct {
	UserID              string `json:"user_id,omitempty"               yaml:"user_id,omitempty"`
	Name                string `json:"name"                            yaml:"name"`
	ProcessPattern      string `json:"process_pattern,omitempty"       yaml:"process_pattern,omitempty"`
	TitleContains       string `json:"title_contains,omitempty"        yaml:"title_contains,omitempty"`
	TitleRegex          string `json:"title_regex,omitempty"           yaml:"title_regex,omitempty"`
	AutoActivity        string `json:"auto_activity,omitempty"         yaml:"auto_activity,omitempty"`
	AutoCommentTemplate string `json:"auto_comment_template,omitempty" yaml:"auto_comment_template,omitempty"`
	ID                  uint64 `json:"id"                              yaml:"id,omitempty"`
	AutoProjectID       uint64 `json:"auto_project_id"                 yaml:"auto_project_id"`
	AutoMilestoneID     uint64 `json:"auto_milestone_id,omitempty"     yaml:"auto_milestone_id,omitempty"`
	Priority            int    `json:"priority"                        yaml:"priority"`
	Enabled             bool   `json:"enabled"                         yaml:"enabled"`
}

// Assignment records the classification of a session or an event.
type Assignment struct {
	Kind        TargetKind `json:"kind"`
	Activity    string     `json:"activity,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	ID          uint64     `json:"id"`
	TargetID    uint64     `json:"target_id"`
	RuleID      uint64     `json:"rule_id,omitempty"`
	ProjectID   uint64     `json:"project_id"`
	MilestoneID uint64     `json:"milestone_id,omitempty"`
}
