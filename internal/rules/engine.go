// Package rules classifies sessions and events against user-defined
// assignment rules.
package rules

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ayoisaiah/werk/internal/models"
)

// Target is anything the engine can classify. Both *models.Session and
// *models.RawEvent satisfy it.
type Target interface {
	TargetUser() string
	TargetProcess() string
	TargetTitle() string
}

// Suggestion is the classification derived from a matching rule.
type Suggestion struct {
	RuleName    string `json:"rule_name"`
	Activity    string `json:"activity,omitempty"`
	Comment     string `json:"comment"`
	RuleID      uint64 `json:"rule_id"`
	ProjectID   uint64 `json:"project_id"`
	MilestoneID uint64 `json:"milestone_id,omitempty"`
}

// Assignment turns the suggestion into an assignment record for the given
// target.
func (s *Suggestion) Assignment(
	kind models.TargetKind,
	targetID uint64,
) models.Assignment {
	return models.Assignment{
		Kind:        kind,
		TargetID:    targetID,
		RuleID:      s.RuleID,
		ProjectID:   s.ProjectID,
		MilestoneID: s.MilestoneID,
		Activity:    s.Activity,
		Comment:     s.Comment,
	}
}

// Engine selects the first matching rule for a target. It holds no state
// besides the pattern cache and may be shared between goroutines.
type Engine struct {
	matcher *Matcher
}

// NewEngine returns an Engine evaluating patterns with m. A nil m uses the
// package's shared Matcher.
func NewEngine(m *Matcher) *Engine {
	if m == nil {
		m = defaultMatcher()
	}

	return &Engine{
		matcher: m,
	}
}

// Order returns the rules that apply to user in evaluation order: enabled
// only, priority descending, then id ascending. The input is not modified.
func Order(rules []models.AssignmentRule, user string) []models.AssignmentRule {
	applicable := make([]models.AssignmentRule, 0, len(rules))

	for i := range rules {
		r := &rules[i]

		if !r.Enabled {
			continue
		}

		if r.UserID != "" && r.UserID != user {
			continue
		}

		applicable = append(applicable, *r)
	}

	slices.SortStableFunc(applicable, func(a, b models.AssignmentRule) int {
		if a.Priority != b.Priority {
			return cmp.Compare(b.Priority, a.Priority)
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return applicable
}

// Matches reports whether every populated constraint of rule holds for t. A
// rule without constraints matches everything.
func (e *Engine) Matches(rule *models.AssignmentRule, t Target) bool {
	if rule.ProcessPattern != "" &&
		!e.matcher.Wildcard(rule.ProcessPattern, t.TargetProcess()) {
		return false
	}

	if rule.TitleContains != "" &&
		!e.matcher.Substring(rule.TitleContains, t.TargetTitle()) {
		return false
	}

	if rule.TitleRegex != "" &&
		!e.matcher.Regex(rule.TitleRegex, t.TargetTitle()) {
		return false
	}

	return true
}

// Classify returns the first rule, in Order, that matches t.
func (e *Engine) Classify(
	t Target,
	rules []models.AssignmentRule,
) (models.AssignmentRule, bool) {
	for _, r := range Order(rules, t.TargetUser()) {
		if e.Matches(&r, t) {
			return r, true
		}
	}

	return models.AssignmentRule{}, false
}

// Suggest classifies t and derives the assignment fields from the selected
// rule.
func (e *Engine) Suggest(
	t Target,
	rules []models.AssignmentRule,
) (Suggestion, bool) {
	r, ok := e.Classify(t, rules)
	if !ok {
		return Suggestion{}, false
	}

	return Suggestion{
		RuleID:      r.ID,
		RuleName:    r.Name,
		ProjectID:   r.AutoProjectID,
		MilestoneID: r.AutoMilestoneID,
		Activity:    r.AutoActivity,
		Comment:     Comment(&r, t),
	}, true
}

// Comment renders the rule's comment template for t. Only {title} and
// {process} are substituted; any other placeholder is kept as written.
func Comment(rule *models.AssignmentRule, t Target) string {
	tmpl := rule.AutoCommentTemplate
	if tmpl == "" {
		tmpl = fmt.Sprintf("Auto-assigned via rule: %s", rule.Name)
	}

	r := strings.NewReplacer(
		"{title}", t.TargetTitle(),
		"{process}", t.TargetProcess(),
	)

	return r.Replace(tmpl)
}
