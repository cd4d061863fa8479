package ratelimit

import (
	"context"
	"time"
)

// CounterStore persists per-(tool, requester, period) usage counters.
//
// IncrementIfBelow is the only mutating call on the hot path and must be
// atomic per counter key: two concurrent calls with one unit of quota left
// must not both be allowed. Counters whose window has passed count as zero.
type CounterStore interface {
	// IncrementIfBelow increments the counter unless it has already reached
	// ceiling. It returns the count after the call and whether the increment
	// was applied. A fresh window starts at count 1 with its reset time at
	// the period boundary.
	IncrementIfBelow(ctx context.Context, toolSlug, requesterKey string, period Period, ceiling int) (count int, allowed bool, err error)

	// Count returns the current count without mutating state. Expired or
	// absent counters report zero.
	Count(ctx context.Context, toolSlug, requesterKey string, period Period) (int, error)

	// Cleanup removes counters whose window ended before now and returns
	// how many were deleted.
	Cleanup(ctx context.Context, now time.Time) (int64, error)
}

func counterKey(toolSlug, requesterKey string, period Period) string {
	return "ratelimit:" + string(period) + ":" + toolSlug + ":" + requesterKey
}
