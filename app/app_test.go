package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/werk/internal/models"
)

const eventLines = `{"id":1,"user_id":"u1","process_name":"acad.exe","window_title":"plan.dwg","start":"2024-03-04T09:00:00Z","end":"2024-03-04T09:20:00Z"}

{"user_id":"u1","source":"phone","process_name":"phone","start":"2024-03-04T10:00:00Z","end":"2024-03-04T10:05:00Z"}
{"user_id":"u2","source":"window","process_name":"winword.exe","window_title":"report.docx","start":"2024-03-04T11:00:00Z","end":"0001-01-01T00:00:00Z"}
`

func TestReadEvents(t *testing.T) {
	events, err := readEvents(strings.NewReader(eventLines))
	require.NoError(t, err)
	require.Len(t, events, 3)

	want := []models.Source{
		models.SourceWindow,
		models.SourcePhone,
		models.SourceWindow,
	}

	got := make([]models.Source, len(events))
	for i := range events {
		got[i] = events[i].Source
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, uint64(1), events[0].ID)
	assert.Equal(t, time.Date(2024, time.March, 4, 9, 20, 0, 0, time.UTC), events[0].End)
	assert.True(t, events[2].Ongoing())
}

func TestReadEventsReportsLine(t *testing.T) {
	input := eventLines + `{"user_id": "u1", "start": "yesterday"}` + "\n"

	_, err := readEvents(strings.NewReader(input))
	require.Error(t, err)

	assert.True(t, errors.Is(err, errDecodeEvent))
	assert.Contains(t, err.Error(), "line 5")
}

func TestRulesRoundTrip(t *testing.T) {
	rs := []models.AssignmentRule{
		{
			ID:             1,
			Name:           "cad",
			ProcessPattern: "acad*",
			AutoProjectID:  7,
			Priority:       10,
			Enabled:        true,
		},
		{
			ID:                  2,
			Name:                "reports",
			UserID:              "u2",
			TitleRegex:          `report.*\.docx$`,
			AutoProjectID:       3,
			AutoCommentTemplate: "Writing {title}",
		},
	}

	var buf bytes.Buffer

	require.NoError(t, writeRules(&buf, rs))

	got, err := readRules(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(rs, got); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRules(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		rs, err := readRules(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, rs)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := readRules(strings.NewReader("rules:\n  - name: cad\n    project: 7\n"))
		assert.True(t, errors.Is(err, errDecodeRules))
	})
}

func TestParseID(t *testing.T) {
	id, err := parseID("12")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)

	for _, s := range []string{"0", "-1", "abc", ""} {
		_, err := parseID(s)
		assert.True(t, errors.Is(err, errInvalidID), "input %q", s)
	}
}

func TestSessionRowsHidePrivateTitles(t *testing.T) {
	rows := sessionRows([]models.Session{
		{ID: 1, ProcessName: "chrome.exe", WindowTitleBase: "bank statement", IsPrivate: true},
		{ID: 2, ProcessName: "acad.exe", WindowTitleBase: "plan.dwg"},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, privateTitle, rows[1][3])
	assert.Equal(t, "plan.dwg", rows[2][3])
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "48m 00s", duration(2880))
	assert.Equal(t, "0m 59s", duration(59))
}

func TestFirstNonEmptyString(t *testing.T) {
	assert.Equal(t, "vim", firstNonEmptyString("", "vim", "nano"))
	assert.Equal(t, "", firstNonEmptyString("", ""))
}
