package config

import (
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/urfave/cli/v2"
)

type FilterTest struct {
	Flags     map[string]string
	Expected  *FilterConfig
	ExpectErr error
	Name      string
}

var now = time.Date(2024, time.March, 14, 15, 30, 0, 0, time.Local)

var filterTestCases = []FilterTest{
	{
		Name:  "default lookback",
		Flags: map[string]string{},
		Expected: &FilterConfig{
			StartTime: now.Add(-DefaultLookback),
			EndTime:   now,
		},
	},
	{
		Name: "today",
		Flags: map[string]string{
			"period": "today",
			"user":   " u1 ",
		},
		Expected: &FilterConfig{
			StartTime: time.Date(2024, time.March, 14, 0, 0, 0, 0, time.Local),
			EndTime:   time.Date(2024, time.March, 14, 23, 59, 59, 0, time.Local),
			User:      "u1",
		},
	},
	{
		Name: "yesterday",
		Flags: map[string]string{
			"period": "yesterday",
		},
		Expected: &FilterConfig{
			StartTime: time.Date(2024, time.March, 13, 0, 0, 0, 0, time.Local),
			EndTime:   time.Date(2024, time.March, 13, 23, 59, 59, 0, time.Local),
		},
	},
	{
		Name: "seven days",
		Flags: map[string]string{
			"period": "7days",
		},
		Expected: &FilterConfig{
			StartTime: time.Date(2024, time.March, 8, 0, 0, 0, 0, time.Local),
			EndTime:   time.Date(2024, time.March, 14, 23, 59, 59, 0, time.Local),
		},
	},
	{
		Name: "unknown period",
		Flags: map[string]string{
			"period": "fortnight",
		},
		ExpectErr: errInvalidPeriod,
	},
	{
		Name: "unparseable start",
		Flags: map[string]string{
			"start": "not a date at all",
		},
		ExpectErr: errInvalidDate,
	},
}

func newContext(t *testing.T, flags map[string]string) *cli.Context {
	t.Helper()

	f := flag.NewFlagSet("test", flag.ContinueOnError)

	for _, name := range []string{"period", "start", "end", "user"} {
		_ = f.String(name, "", "")
	}

	for k, v := range flags {
		if err := f.Set(k, v); err != nil {
			t.Fatal(err)
		}
	}

	return cli.NewContext(&cli.App{}, f, nil)
}

func TestFilter(t *testing.T) {
	for _, tc := range filterTestCases {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := Filter(newContext(t, tc.Flags), now)

			if tc.ExpectErr != nil {
				if !errors.Is(err, tc.ExpectErr) {
					t.Fatalf("expected error %v, but got: %v", tc.ExpectErr, err)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if !got.StartTime.Equal(tc.Expected.StartTime) {
				t.Errorf(
					"expected start to be: %s, but got: %s",
					tc.Expected.StartTime,
					got.StartTime,
				)
			}

			if !got.EndTime.Equal(tc.Expected.EndTime) {
				t.Errorf(
					"expected end to be: %s, but got: %s",
					tc.Expected.EndTime,
					got.EndTime,
				)
			}

			if got.User != tc.Expected.User {
				t.Errorf("expected user %q, but got %q", tc.Expected.User, got.User)
			}
		})
	}
}

func TestFilterDates(t *testing.T) {
	got, err := Filter(newContext(t, map[string]string{
		"start": "4 March 2024",
		"end":   "6 March 2024",
	}), now)
	if err != nil {
		t.Fatal(err)
	}

	if got.StartTime.Day() != 4 || got.EndTime.Day() != 6 {
		t.Errorf("unexpected range %s - %s", got.StartTime, got.EndTime)
	}

	_, err = Filter(newContext(t, map[string]string{
		"start": "6 March 2024",
		"end":   "4 March 2024",
	}), now)
	if !errors.Is(err, errInvalidDateRange) {
		t.Errorf("expected an invalid range error, got %v", err)
	}
}

func TestApplyCLIOptions(t *testing.T) {
	gap, days := 12, 3

	c := &Config{
		Rules: RulesConfig{AutoApply: true},
		Log:   LogConfig{Level: "info"},
	}

	applyCLIOptions(c, &CLIOptions{
		MaxBreakMinutes: &gap,
		BackfillDays:    &days,
		NoRules:         true,
		Debug:           true,
	})

	if c.Aggregation.MaxBreakMinutes != 12 || c.Backfill.Days != 3 {
		t.Errorf("expected explicit flags to override, got %+v", c)
	}

	if c.Rules.AutoApply {
		t.Error("expected --no-rules to disable auto apply")
	}

	if c.Log.Level != "debug" {
		t.Errorf("expected debug log level, got %s", c.Log.Level)
	}
}
