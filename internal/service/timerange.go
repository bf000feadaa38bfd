package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/caremind/medtrack-agent/pkg/model"
)

// ErrInvalidRange is returned when an explicit window has from after to
var ErrInvalidRange = errors.New("window start must not be after window end")

// Named reporting periods accepted by ResolvePeriod
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

const dateOnlyLayout = "2006-01-02"

// ResolvePeriod computes the inclusive UTC window for a named period
// containing now. "week" is the ISO week (Monday 00:00:00.000 through
// Sunday 23:59:59.999), Monday-start regardless of host locale; "month"
// is the UTC calendar month.
func ResolvePeriod(period string, now time.Time) (model.TimeWindow, error) {
	now = now.UTC()

	switch period {
	case PeriodWeek:
		// time.Weekday puts Sunday at 0; shift so Monday is day 0.
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
			AddDate(0, 0, -daysSinceMonday)
		sundayEnd := monday.AddDate(0, 0, 7).Add(-time.Millisecond)
		return model.TimeWindow{From: monday, To: sundayEnd}, nil
	case PeriodMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		lastEnd := first.AddDate(0, 1, 0).Add(-time.Second)
		return model.TimeWindow{From: first, To: lastEnd}, nil
	default:
		return model.TimeWindow{}, fmt.Errorf("unknown period %q", period)
	}
}

// WindowFromExplicit validates an explicit window
func WindowFromExplicit(from, to time.Time) (model.TimeWindow, error) {
	if from.After(to) {
		return model.TimeWindow{}, fmt.Errorf("%w: from=%s to=%s",
			ErrInvalidRange, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return model.TimeWindow{From: from.UTC(), To: to.UTC()}, nil
}

// WindowFromStrings builds a window from caller-supplied bounds. Each bound
// is either RFC3339 or a date-only YYYY-MM-DD string; date-only bounds are
// normalized to the start (from) or end (to) of that UTC day so windows
// stay inclusive on both sides. Every window the agent constructs from
// string input goes through here.
func WindowFromStrings(from, to string) (model.TimeWindow, error) {
	fromT, err := parseBound(from, false)
	if err != nil {
		return model.TimeWindow{}, fmt.Errorf("invalid from bound: %w", err)
	}
	toT, err := parseBound(to, true)
	if err != nil {
		return model.TimeWindow{}, fmt.Errorf("invalid to bound: %w", err)
	}
	return WindowFromExplicit(fromT, toT)
}

// parseBound parses one window bound, expanding date-only input to the
// day's inclusive boundary.
func parseBound(s string, endOfDay bool) (time.Time, error) {
	if d, err := time.ParseInLocation(dateOnlyLayout, s, time.UTC); err == nil {
		if endOfDay {
			return d.Add(24*time.Hour - time.Second), nil
		}
		return d, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bound %q is neither %s nor RFC3339", s, dateOnlyLayout)
	}
	return t.UTC(), nil
}
