package service

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeriod_Week(t *testing.T) {
	// Wednesday 2025-06-18 12:30 UTC
	now := time.Date(2025, 6, 18, 12, 30, 0, 0, time.UTC)

	window, err := ResolvePeriod(PeriodWeek, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2025, 6, 22, 23, 59, 59, 999000000, time.UTC), window.To)
	assert.True(t, window.Contains(now))
}

func TestResolvePeriod_Week_SundayBelongsToEndingWeek(t *testing.T) {
	// Sunday must resolve to the week that ends that day, not start a new one
	now := time.Date(2025, 6, 22, 8, 0, 0, 0, time.UTC)

	window, err := ResolvePeriod(PeriodWeek, now)
	require.NoError(t, err)

	assert.Equal(t, time.Monday, window.From.Weekday())
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), window.From)
	assert.True(t, window.Contains(now))
}

func TestResolvePeriod_Month(t *testing.T) {
	now := time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)

	window, err := ResolvePeriod(PeriodMonth, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC), window.To)
}

func TestResolvePeriod_UnknownPeriod(t *testing.T) {
	_, err := ResolvePeriod("fortnight", time.Now())
	assert.Error(t, err)
}

func TestWindowFromExplicit_RejectsInvertedRange(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	_, err := WindowFromExplicit(from, to)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestWindowFromStrings_DateOnlyNormalization(t *testing.T) {
	window, err := WindowFromStrings("2025-01-01", "2025-01-31")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), window.To)
}

func TestWindowFromStrings_MixedBounds(t *testing.T) {
	window, err := WindowFromStrings("2025-01-01", "2025-01-15T12:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), window.To)
}

func TestWindowFromStrings_RejectsGarbage(t *testing.T) {
	_, err := WindowFromStrings("yesterday", "2025-01-31")
	assert.Error(t, err)

	_, err = WindowFromStrings("2025-02-01", "2025-01-31")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

// The week window always starts on a Monday at midnight UTC, ends on the
// following Sunday just before midnight, and contains the instant it was
// resolved for. Sampled across a full year including the year boundary.
func TestProperty_WeekWindowInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	base := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)

	properties.Property("week window is Monday-aligned and contains now", prop.ForAll(
		func(offsetMinutes int) bool {
			now := base.Add(time.Duration(offsetMinutes) * time.Minute)

			window, err := ResolvePeriod(PeriodWeek, now)
			if err != nil {
				return false
			}

			if window.From.Weekday() != time.Monday {
				return false
			}
			if window.From.Hour() != 0 || window.From.Minute() != 0 || window.From.Second() != 0 {
				return false
			}
			if window.To.Weekday() != time.Sunday {
				return false
			}
			if window.To.Sub(window.From) != 7*24*time.Hour-time.Millisecond {
				return false
			}
			return window.Contains(now)
		},
		gen.IntRange(0, 366*24*60),
	))

	properties.Property("month window contains now and spans one calendar month", prop.ForAll(
		func(offsetMinutes int) bool {
			now := base.Add(time.Duration(offsetMinutes) * time.Minute)

			window, err := ResolvePeriod(PeriodMonth, now)
			if err != nil {
				return false
			}
			if window.From.Day() != 1 {
				return false
			}
			if window.From.Month() != now.Month() || window.From.Year() != now.Year() {
				return false
			}
			return window.Contains(now)
		},
		gen.IntRange(0, 366*24*60),
	))

	properties.TestingRun(t)
}
