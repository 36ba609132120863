package config

import (
	"slices"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/werk/internal/timeutil"
)

// DefaultLookback is the range used when no period or start date is given.
const DefaultLookback = 7 * 24 * time.Hour

// FilterConfig selects the records a command operates on: one user (or all
// users when empty) within [StartTime, EndTime].
type FilterConfig struct {
	StartTime time.Time
	EndTime   time.Time
	User      string
}

// getTimeRange returns the start and end time according to the
// specified time period.
func getTimeRange(period timeutil.Period, now time.Time) (start, end time.Time) {
	start = timeutil.RoundToStart(now)

	end = timeutil.RoundToEnd(now)

	//nolint:exhaustive // other cases covered by default
	switch period {
	case timeutil.PeriodToday:
		return
	case timeutil.PeriodYesterday:
		start = now.AddDate(0, 0, timeutil.Range[period])
		start = timeutil.RoundToStart(start)
		end = timeutil.RoundToEnd(start)

		return
	case timeutil.PeriodAllTime:
		start = time.Time{}
		return
	default:
		start = now.AddDate(0, 0, timeutil.Range[period])
		start = timeutil.RoundToStart(start)
	}

	return
}

func parseDate(which, s string, now time.Time) (time.Time, error) {
	dt, err := dateparser.Parse(&dateparser.Configuration{
		CurrentTime: now,
	}, s)
	if err != nil {
		return time.Time{}, errInvalidDate.Fmt(which, s)
	}

	return dt.Time, nil
}

// Filter resolves --user, --period, --start and --end relative to now.
// Without a period or start date the range covers the DefaultLookback
// ending now.
func Filter(ctx *cli.Context, now time.Time) (*FilterConfig, error) {
	filterCfg := &FilterConfig{
		User: strings.TrimSpace(ctx.String("user")),
	}

	period := timeutil.Period(strings.TrimSpace(ctx.String("period")))

	if period != "" && !slices.Contains(timeutil.PeriodCollection, period) {
		names := make([]string, len(timeutil.PeriodCollection))
		for i, p := range timeutil.PeriodCollection {
			names[i] = string(p)
		}

		return nil, errInvalidPeriod.Fmt(strings.Join(names, ", "))
	}

	if period != "" {
		filterCfg.StartTime, filterCfg.EndTime = getTimeRange(period, now)

		return filterCfg, nil
	}

	filterCfg.StartTime = now.Add(-DefaultLookback)
	filterCfg.EndTime = now

	if start := ctx.String("start"); start != "" {
		dateTime, err := parseDate("start", start, now)
		if err != nil {
			return nil, err
		}

		filterCfg.StartTime = dateTime

		if dateTime.After(now) {
			filterCfg.EndTime = timeutil.RoundToEnd(dateTime)
		}
	}

	if end := ctx.String("end"); end != "" {
		dateTime, err := parseDate("end", end, now)
		if err != nil {
			return nil, err
		}

		filterCfg.EndTime = dateTime
	}

	if filterCfg.EndTime.Before(filterCfg.StartTime) {
		return nil, errInvalidDateRange
	}

	return filterCfg, nil
}
