package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biztools-dev/biztools/internal/ratelimit"
	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anon = tier.Requester{IP: "203.0.113.5"}

func freeTool() GatedTool {
	return GatedTool{Slug: "roi-calculator", RequiredTier: tier.Free}
}

func proTool() GatedTool {
	return GatedTool{Slug: "tagline-writer", RequiredTier: tier.Pro}
}

// countingStore wraps a CounterStore and records write calls.
type countingStore struct {
	ratelimit.CounterStore
	writes int
}

func (c *countingStore) IncrementIfBelow(ctx context.Context, toolSlug, requesterKey string, period ratelimit.Period, ceiling int) (int, bool, error) {
	c.writes++
	return c.CounterStore.IncrementIfBelow(ctx, toolSlug, requesterKey, period, ceiling)
}

// failingStore errors on every call.
type failingStore struct{}

func (failingStore) IncrementIfBelow(ctx context.Context, toolSlug, requesterKey string, period ratelimit.Period, ceiling int) (int, bool, error) {
	return 0, false, errors.New("connection refused")
}

func (failingStore) Count(ctx context.Context, toolSlug, requesterKey string, period ratelimit.Period) (int, error) {
	return 0, errors.New("connection refused")
}

func (failingStore) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestAuthorizeQuotaCountdown(t *testing.T) {
	engine := NewEngine(tier.StaticResolver{Tier: tier.Free}, ratelimit.NewMemoryStore(), nil)
	ctx := context.Background()

	// Free tier gets 10 per day; remaining counts down 9..0.
	for i := 1; i <= 10; i++ {
		res := engine.Authorize(ctx, freeTool(), anon)
		require.True(t, res.Allowed, "call %d", i)
		assert.Equal(t, 10-i, res.Remaining, "call %d", i)
	}

	res := engine.Authorize(ctx, freeTool(), anon)
	assert.False(t, res.Allowed)
	assert.Equal(t, ReasonRateLimited, res.Reason)
	assert.Equal(t, 0, res.Remaining)
	assert.False(t, res.ResetAt.IsZero())
}

func TestAuthorizeUnlimitedTier(t *testing.T) {
	store := &countingStore{CounterStore: ratelimit.NewMemoryStore()}
	engine := NewEngine(tier.StaticResolver{Tier: tier.Pro}, store, nil)
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		res := engine.Authorize(ctx, freeTool(), anon)
		require.True(t, res.Allowed)
		require.Equal(t, Unlimited, res.Remaining)
	}

	// Unlimited tiers never touch the counter store.
	assert.Zero(t, store.writes)

	remaining, err := engine.RemainingUses(ctx, freeTool(), anon)
	require.NoError(t, err)
	assert.Equal(t, Unlimited, remaining)
}

func TestAuthorizeTierOrdering(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		requester tier.Tier
		allowed   bool
	}{
		{tier.Free, false},
		{tier.Starter, false},
		{tier.Pro, true},
		{tier.Business, true},
	}

	for _, c := range cases {
		engine := NewEngine(tier.StaticResolver{Tier: c.requester}, ratelimit.NewMemoryStore(), nil)
		res := engine.Authorize(ctx, proTool(), anon)

		if c.allowed {
			assert.Truef(t, res.Allowed, "tier %s", c.requester)
		} else {
			assert.Falsef(t, res.Allowed, "tier %s", c.requester)
			assert.Equal(t, ReasonUpgradeRequired, res.Reason)
		}
	}
}

func TestAuthorizeNoWritesOnTierDenial(t *testing.T) {
	store := &countingStore{CounterStore: ratelimit.NewMemoryStore()}
	engine := NewEngine(tier.StaticResolver{Tier: tier.Starter}, store, nil)

	res := engine.Authorize(context.Background(), proTool(), anon)
	require.False(t, res.Allowed)
	require.Equal(t, ReasonUpgradeRequired, res.Reason)
	assert.Zero(t, store.writes)
}

func TestAuthorizeFailsClosedOnStorageError(t *testing.T) {
	engine := NewEngine(tier.StaticResolver{Tier: tier.Free}, failingStore{}, nil)

	res := engine.Authorize(context.Background(), freeTool(), anon)
	assert.False(t, res.Allowed)
	assert.Equal(t, ReasonStorageError, res.Reason)
	assert.Error(t, res.Err)

	_, err := engine.RemainingUses(context.Background(), freeTool(), anon)
	assert.Error(t, err)
}

func TestAuthorizePolicyOverride(t *testing.T) {
	engine := NewEngine(tier.StaticResolver{Tier: tier.Free}, ratelimit.NewMemoryStore(), nil)
	ctx := context.Background()

	tool := GatedTool{
		Slug:         "heavy-tool",
		RequiredTier: tier.Free,
		Policy: Policy{
			tier.Free: {ratelimit.PeriodDay: 2},
		},
	}

	res := engine.Authorize(ctx, tool, anon)
	require.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)

	res = engine.Authorize(ctx, tool, anon)
	require.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	res = engine.Authorize(ctx, tool, anon)
	assert.False(t, res.Allowed)
	assert.Equal(t, ReasonRateLimited, res.Reason)
}

func TestRemainingUsesDoesNotMutate(t *testing.T) {
	engine := NewEngine(tier.StaticResolver{Tier: tier.Free}, ratelimit.NewMemoryStore(), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		remaining, err := engine.RemainingUses(ctx, freeTool(), anon)
		require.NoError(t, err)
		assert.Equal(t, 10, remaining)
	}

	res := engine.Authorize(ctx, freeTool(), anon)
	require.True(t, res.Allowed)

	remaining, err := engine.RemainingUses(ctx, freeTool(), anon)
	require.NoError(t, err)
	assert.Equal(t, 9, remaining)
}

func TestQuotaFallback(t *testing.T) {
	// A policy with no entry for the tier falls back to 10/day.
	p := Policy{tier.Pro: {ratelimit.PeriodDay: Unlimited}}
	assert.Equal(t, 10, p.Quota(tier.Free, ratelimit.PeriodDay))
	assert.Equal(t, Unlimited, p.Quota(tier.Pro, ratelimit.PeriodDay))
	assert.Equal(t, 10, p.Quota(tier.Pro, ratelimit.PeriodWeek))
}
