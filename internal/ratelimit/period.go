package ratelimit

import (
	"fmt"
	"time"
)

// Period is a rate-limit window. Counters accumulate within a period and
// reset at its boundary.
type Period string

const (
	PeriodHour  Period = "hour"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodHour, PeriodDay, PeriodWeek, PeriodMonth:
		return Period(s), nil
	default:
		return "", fmt.Errorf("unknown rate limit period %q", s)
	}
}

// ResetTime returns the instant the current window ends: the top of the next
// hour, midnight after the current day, midnight after the coming Sunday, or
// the first instant of the next month.
func (p Period) ResetTime(now time.Time) time.Time {
	switch p {
	case PeriodHour:
		return now.Truncate(time.Hour).Add(time.Hour)
	case PeriodWeek:
		days := int(time.Sunday+7-now.Weekday()) % 7
		if days == 0 {
			days = 7
		}
		y, m, d := now.AddDate(0, 0, days).Date()
		return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	case PeriodMonth:
		y, m, _ := now.Date()
		return time.Date(y, m+1, 1, 0, 0, 0, 0, now.Location())
	default: // day
		y, m, d := now.Date()
		return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	}
}
