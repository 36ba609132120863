package rules

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/werk/internal/models"
)

type matchTest struct {
	Name     string
	Pattern  string
	Value    string
	Expected bool
}

var wildcardTestCases = []matchTest{
	{Name: "empty pattern", Pattern: "", Value: "acad.exe", Expected: true},
	{Name: "exact", Pattern: "acad.exe", Value: "acad.exe", Expected: true},
	{Name: "ignore case", Pattern: "ACAD.EXE", Value: "acad.exe", Expected: true},
	{Name: "dot is literal", Pattern: "acad.exe", Value: "acadxexe", Expected: false},
	{Name: "anchored", Pattern: "acad", Value: "acad.exe", Expected: false},
	{Name: "star", Pattern: "*", Value: "anything.exe", Expected: true},
	{Name: "star matches empty", Pattern: "acad*", Value: "acad", Expected: true},
	{Name: "prefix star", Pattern: "*.exe", Value: "winword.exe", Expected: true},
	{Name: "middle star", Pattern: "win*.exe", Value: "winword.exe", Expected: true},
	{Name: "question mark is literal", Pattern: "acad?exe", Value: "acad.exe", Expected: false},
	{Name: "brackets are literal", Pattern: "[a].exe", Value: "[a].exe", Expected: true},
}

func TestWildcardMatch(t *testing.T) {
	for _, tc := range wildcardTestCases {
		t.Run(tc.Name, func(t *testing.T) {
			got := WildcardMatch(tc.Pattern, tc.Value)
			assert.Equal(t, tc.Expected, got)
		})
	}
}

var substringTestCases = []matchTest{
	{Name: "empty needle", Pattern: "", Value: "Drawing1.dwg", Expected: true},
	{Name: "ignore case", Pattern: "DWG", Value: "drawing1.dwg", Expected: true},
	{Name: "absent", Pattern: "xlsx", Value: "drawing1.dwg", Expected: false},
	{Name: "empty haystack", Pattern: "dwg", Value: "", Expected: false},
}

func TestSubstringMatch(t *testing.T) {
	for _, tc := range substringTestCases {
		t.Run(tc.Name, func(t *testing.T) {
			got := SubstringMatch(tc.Pattern, tc.Value)
			assert.Equal(t, tc.Expected, got)
		})
	}
}

var regexTestCases = []matchTest{
	{Name: "search not full match", Pattern: `\d{4}`, Value: "project 2024 plan", Expected: true},
	{Name: "ignore case", Pattern: "^drawing", Value: "Drawing1.dwg", Expected: true},
	{Name: "no match", Pattern: `^\d+$`, Value: "drawing", Expected: false},
	{Name: "invalid", Pattern: "(unclosed", Value: "(unclosed", Expected: false},
}

func TestRegexMatch(t *testing.T) {
	for _, tc := range regexTestCases {
		t.Run(tc.Name, func(t *testing.T) {
			got := RegexMatch(tc.Pattern, tc.Value)
			assert.Equal(t, tc.Expected, got)
		})
	}
}

func TestInvalidRegexIsLoggedOnce(t *testing.T) {
	var buf bytes.Buffer

	m := NewMatcher(2, slog.New(slog.NewTextHandler(&buf, nil)))

	for range 3 {
		assert.False(t, m.Regex("(unclosed", "anything"))
	}

	assert.Equal(t, 1, strings.Count(buf.String(), "invalid title regex"))
	assert.Error(t, m.Valid("(unclosed"))
	assert.NoError(t, m.Valid(`^plan\b`))
}

func TestWildcardAndRegexDoNotShareEntries(t *testing.T) {
	m := NewMatcher(0, nil)

	// as a regex "a.c" matches "abc"; as a glob it must not
	assert.True(t, m.Regex("a.c", "abc"))
	assert.False(t, m.Wildcard("a.c", "abc"))
}

func TestMatcherConcurrentUse(t *testing.T) {
	m := NewMatcher(4, nil)

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			patterns := []string{"acad*", "*.exe", "win*", "chrome.exe", "*"}
			p := patterns[i%len(patterns)]

			assert.Equal(t, WildcardMatch(p, "acad.exe"), m.Wildcard(p, "acad.exe"))
		}()
	}

	wg.Wait()
}

func session(process, titleBase string) *models.Session {
	return &models.Session{
		ID:              1,
		UserID:          "u1",
		ProcessName:     process,
		WindowTitleBase: titleBase,
	}
}

func TestClassifyPriority(t *testing.T) {
	rules := []models.AssignmentRule{
		{ID: 2, Name: "catch-all", ProcessPattern: "*", Priority: 0, Enabled: true},
		{ID: 1, Name: "cad", ProcessPattern: "acad.exe", Priority: 10, Enabled: true},
	}

	e := NewEngine(nil)

	got, ok := e.Classify(session("acad.exe", "drawing1.dwg"), rules)
	require.True(t, ok)
	assert.Equal(t, "cad", got.Name)

	got, ok = e.Classify(session("chrome.exe", "inbox"), rules)
	require.True(t, ok)
	assert.Equal(t, "catch-all", got.Name)
}

func TestClassifyInvalidRegexFailsClosed(t *testing.T) {
	rules := []models.AssignmentRule{
		{ID: 1, Name: "broken", TitleRegex: "(unclosed", Priority: 100, Enabled: true},
		{ID: 2, Name: "fallback", Priority: 0, Enabled: true},
	}

	e := NewEngine(NewMatcher(0, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	assert.NotPanics(t, func() {
		got, ok := e.Classify(session("acad.exe", "(unclosed"), rules)
		require.True(t, ok)
		assert.Equal(t, "fallback", got.Name)
	})
}

func TestClassifyTieBreaksOnID(t *testing.T) {
	rules := []models.AssignmentRule{
		{ID: 9, Name: "nine", ProcessPattern: "acad*", Priority: 5, Enabled: true},
		{ID: 4, Name: "four", TitleContains: "dwg", Priority: 5, Enabled: true},
		{ID: 7, Name: "seven", Priority: 5, Enabled: true},
	}

	e := NewEngine(nil)

	for range 5 {
		got, ok := e.Classify(session("acad.exe", "plan.dwg"), rules)
		require.True(t, ok)
		assert.Equal(t, uint64(4), got.ID)
	}
}

func TestClassifyFiltersDisabledAndOtherUsers(t *testing.T) {
	rules := []models.AssignmentRule{
		{ID: 1, Name: "disabled", Priority: 10, Enabled: false},
		{ID: 2, Name: "other user", UserID: "u2", Priority: 9, Enabled: true},
		{ID: 3, Name: "mine", UserID: "u1", Priority: 1, Enabled: true},
	}

	got, ok := NewEngine(nil).Classify(session("acad.exe", ""), rules)
	require.True(t, ok)
	assert.Equal(t, "mine", got.Name)
}

func TestClassifyNoRules(t *testing.T) {
	_, ok := NewEngine(nil).Classify(session("acad.exe", "plan"), nil)
	assert.False(t, ok)
}

func TestClassifyAllConstraintsMustHold(t *testing.T) {
	rules := []models.AssignmentRule{
		{
			ID:             1,
			Name:           "site plans",
			ProcessPattern: "acad.exe",
			TitleContains:  "site",
			TitleRegex:     `\.dwg$`,
			Enabled:        true,
		},
	}

	e := NewEngine(nil)

	_, ok := e.Classify(session("acad.exe", "site plan.dwg"), rules)
	assert.True(t, ok)

	_, ok = e.Classify(session("acad.exe", "site plan.pdf"), rules)
	assert.False(t, ok)

	_, ok = e.Classify(session("revit.exe", "site plan.dwg"), rules)
	assert.False(t, ok)
}

func TestClassifyEventUsesRawTitle(t *testing.T) {
	rules := []models.AssignmentRule{
		{ID: 1, Name: "autocad", TitleContains: "AutoCAD 2024", Enabled: true},
	}

	ev := &models.RawEvent{
		UserID:      "u1",
		ProcessName: "acad.exe",
		WindowTitle: "Drawing1.dwg - AutoCAD 2024",
	}

	_, ok := NewEngine(nil).Classify(ev, rules)
	assert.True(t, ok)
}

func TestClassifyIsIdempotent(t *testing.T) {
	rules := []models.AssignmentRule{
		{ID: 3, Name: "b", TitleRegex: "plan", Priority: 1, Enabled: true},
		{ID: 1, Name: "a", ProcessPattern: "*cad*", Priority: 1, Enabled: true},
	}
	before := append([]models.AssignmentRule(nil), rules...)

	e := NewEngine(nil)
	target := session("acad.exe", "plan")

	first, _ := e.Classify(target, rules)
	second, _ := e.Classify(target, rules)

	assert.Equal(t, first, second)
	assert.Equal(t, before, rules, "rules must not be reordered")
}

type commentTest struct {
	Name     string
	Template string
	Expected string
}

var commentTestCases = []commentTest{
	{
		Name:     "default comment",
		Template: "",
		Expected: "Auto-assigned via rule: cad",
	},
	{
		Name:     "placeholders",
		Template: "{process}: {title}",
		Expected: "acad.exe: drawing1.dwg",
	},
	{
		Name:     "unknown placeholder stays literal",
		Template: "{title} for {client}",
		Expected: "drawing1.dwg for {client}",
	},
	{
		Name:     "repeated placeholder",
		Template: "{title}/{title}",
		Expected: "drawing1.dwg/drawing1.dwg",
	},
}

func TestComment(t *testing.T) {
	for _, tc := range commentTestCases {
		t.Run(tc.Name, func(t *testing.T) {
			rule := &models.AssignmentRule{Name: "cad", AutoCommentTemplate: tc.Template}

			got := Comment(rule, session("acad.exe", "drawing1.dwg"))
			assert.Equal(t, tc.Expected, got)
		})
	}
}

func TestSuggest(t *testing.T) {
	rules := []models.AssignmentRule{
		{
			ID:                  5,
			Name:                "cad",
			ProcessPattern:      "acad.exe",
			AutoProjectID:       42,
			AutoMilestoneID:     7,
			AutoActivity:        "drafting",
			AutoCommentTemplate: "Worked on {title}",
			Enabled:             true,
		},
	}

	sess := session("acad.exe", "drawing1.dwg")

	s, ok := NewEngine(nil).Suggest(sess, rules)
	require.True(t, ok)

	want := models.Assignment{
		Kind:        models.TargetSession,
		TargetID:    1,
		RuleID:      5,
		ProjectID:   42,
		MilestoneID: 7,
		Activity:    "drafting",
		Comment:     "Worked on drawing1.dwg",
	}

	assert.Equal(t, want, s.Assignment(models.TargetSession, sess.ID))

	_, ok = NewEngine(nil).Suggest(session("chrome.exe", "inbox"), rules)
	assert.False(t, ok)
}
