package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	for _, s := range []string{"hour", "day", "week", "month"} {
		p, err := ParsePeriod(s)
		require.NoError(t, err)
		assert.Equal(t, Period(s), p)
	}

	_, err := ParsePeriod("fortnight")
	assert.Error(t, err)
}

func TestResetTime(t *testing.T) {
	// Wednesday 2026-09-02 14:30:45 UTC
	now := time.Date(2026, time.September, 2, 14, 30, 45, 0, time.UTC)

	assert.Equal(t,
		time.Date(2026, time.September, 2, 15, 0, 0, 0, time.UTC),
		PeriodHour.ResetTime(now))

	assert.Equal(t,
		time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC),
		PeriodDay.ResetTime(now))

	// Week ends at midnight after the coming Sunday (Sep 6).
	assert.Equal(t,
		time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC),
		PeriodWeek.ResetTime(now))

	assert.Equal(t,
		time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
		PeriodMonth.ResetTime(now))
}

func TestResetTimeWeekOnSunday(t *testing.T) {
	// On a Sunday the window runs through the following Sunday.
	sunday := time.Date(2026, time.September, 6, 10, 0, 0, 0, time.UTC)

	assert.Equal(t,
		time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
		PeriodWeek.ResetTime(sunday))
}

func TestResetTimeMonthRollover(t *testing.T) {
	dec := time.Date(2026, time.December, 15, 8, 0, 0, 0, time.UTC)

	assert.Equal(t,
		time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		PeriodMonth.ResetTime(dec))
}
