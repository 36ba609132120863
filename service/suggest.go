package service

import (
	"context"

	"github.com/ayoisaiah/werk/internal/apperr"
	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/rules"
)

var (
	errUnknownKind = &apperr.Error{
		Message: "unknown target kind %q: expected session or event",
	}

	errRuleName = &apperr.Error{
		Message: "a rule must have a name",
	}

	errRuleProject = &apperr.Error{
		Message: "rule %q has no project id",
	}
)

// target loads the session or event that kind and id refer to.
func (s *Service) target(
	ctx context.Context,
	kind models.TargetKind,
	id uint64,
) (rules.Target, error) {
	switch kind {
	case models.TargetSession:
		sess, err := s.db.Session(ctx, id)
		if err != nil {
			return nil, err
		}

		return sess, nil
	case models.TargetEvent:
		ev, err := s.db.Event(ctx, id)
		if err != nil {
			return nil, err
		}

		return ev, nil
	default:
		return nil, errUnknownKind.Fmt(kind)
	}
}

// Suggest classifies a stored session or event against the current rules.
// The boolean is false when no rule matches.
func (s *Service) Suggest(
	ctx context.Context,
	kind models.TargetKind,
	id uint64,
) (rules.Suggestion, bool, error) {
	t, err := s.target(ctx, kind, id)
	if err != nil {
		return rules.Suggestion{}, false, err
	}

	rs, err := s.db.Rules(ctx)
	if err != nil {
		return rules.Suggestion{}, false, err
	}

	sug, ok := s.engine.Suggest(t, rs)

	return sug, ok, nil
}

// ApplySuggestion stores the suggested assignment for a session or event. It
// returns nil when no rule matches.
func (s *Service) ApplySuggestion(
	ctx context.Context,
	kind models.TargetKind,
	id uint64,
) (*models.Assignment, error) {
	sug, ok, err := s.Suggest(ctx, kind, id)
	if err != nil || !ok {
		return nil, err
	}

	a := sug.Assignment(kind, id)

	if err := s.db.SaveAssignment(ctx, &a); err != nil {
		return nil, err
	}

	return &a, nil
}

// Assign stores a manual assignment, replacing the target's previous one.
func (s *Service) Assign(ctx context.Context, a *models.Assignment) error {
	if a.Kind != models.TargetSession && a.Kind != models.TargetEvent {
		return errUnknownKind.Fmt(a.Kind)
	}

	return s.db.SaveAssignment(ctx, a)
}

// CheckRule rejects rules that can never produce a usable assignment. A
// title regex that does not compile is only a warning: the rule is kept and
// fails closed.
func (s *Service) CheckRule(r *models.AssignmentRule) (warnings []string, err error) {
	if r.Name == "" {
		return nil, errRuleName
	}

	if r.AutoProjectID == 0 {
		return nil, errRuleProject.Fmt(r.Name)
	}

	if r.TitleRegex != "" {
		if err := s.matcher.Valid(r.TitleRegex); err != nil {
			warnings = append(warnings, "rule "+r.Name+": "+err.Error()+
				"; the rule will never match on title")
		}
	}

	return warnings, nil
}

// SaveRule checks r and stores it.
func (s *Service) SaveRule(
	ctx context.Context,
	r *models.AssignmentRule,
) ([]string, error) {
	warnings, err := s.CheckRule(r)
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		s.logger.WarnContext(ctx, w, "rule", r.Name)
	}

	return warnings, s.db.SaveRule(ctx, r)
}
