package access

import (
	"context"
	"time"

	"github.com/biztools-dev/biztools/internal/ratelimit"
	"github.com/biztools-dev/biztools/internal/tier"
)

// Reason discriminates why an invocation was denied. Codes are stable and
// machine-readable; clients branch on them rather than on message text.
type Reason string

const (
	ReasonUpgradeRequired Reason = "upgrade_required"
	ReasonRateLimited     Reason = "rate_limit"
	ReasonStorageError    Reason = "storage"
)

// Result is the outcome of an authorization check. Remaining is the number
// of uses left in the current window after this call, or Unlimited. Err is
// set only for storage/resolver failures and is for server-side logging;
// callers surface the Reason, not the error.
type Result struct {
	Allowed   bool
	Reason    Reason
	Tier      tier.Tier
	Remaining int
	ResetAt   time.Time
	Err       error
}

// Engine decides, before any computation or external call, whether a
// requester may invoke a tool right now. Tier gating runs first and is
// side-effect free; the rate check charges one unit of quota on success.
type Engine struct {
	resolver      tier.Resolver
	counters      ratelimit.CounterStore
	defaultPolicy Policy
}

func NewEngine(resolver tier.Resolver, counters ratelimit.CounterStore, defaultPolicy Policy) *Engine {
	if defaultPolicy == nil {
		defaultPolicy = DefaultPolicy()
	}
	return &Engine{
		resolver:      resolver,
		counters:      counters,
		defaultPolicy: defaultPolicy,
	}
}

// Authorize runs the tier check, then the daily rate check. Any resolver or
// store failure denies the request: a broken counter store must never grant
// free passes.
func (e *Engine) Authorize(ctx context.Context, tool GatedTool, req tier.Requester) Result {
	requesterTier, res := e.resolveTier(ctx, tool, req)
	if res != nil {
		return *res
	}

	if tool.RequiredTier != tier.Free && !requesterTier.Covers(tool.RequiredTier) {
		return Result{
			Allowed: false,
			Reason:  ReasonUpgradeRequired,
			Tier:    requesterTier,
		}
	}

	quota := e.policyFor(tool).Quota(requesterTier, ratelimit.PeriodDay)
	if quota == Unlimited {
		return Result{
			Allowed:   true,
			Tier:      requesterTier,
			Remaining: Unlimited,
		}
	}

	count, allowed, err := e.counters.IncrementIfBelow(ctx, tool.Slug, req.Key(), ratelimit.PeriodDay, quota)
	if err != nil {
		return Result{
			Allowed: false,
			Reason:  ReasonStorageError,
			Tier:    requesterTier,
			Err:     err,
		}
	}

	resetAt := ratelimit.PeriodDay.ResetTime(time.Now())
	if !allowed {
		return Result{
			Allowed:   false,
			Reason:    ReasonRateLimited,
			Tier:      requesterTier,
			Remaining: 0,
			ResetAt:   resetAt,
		}
	}

	return Result{
		Allowed:   true,
		Tier:      requesterTier,
		Remaining: quota - count,
		ResetAt:   resetAt,
	}
}

// RemainingUses mirrors the rate check without charging quota. Returns
// Unlimited for tiers without a ceiling.
func (e *Engine) RemainingUses(ctx context.Context, tool GatedTool, req tier.Requester) (int, error) {
	requesterTier, err := e.resolver.ResolveTier(ctx, req)
	if err != nil {
		return 0, err
	}

	quota := e.policyFor(tool).Quota(requesterTier, ratelimit.PeriodDay)
	if quota == Unlimited {
		return Unlimited, nil
	}

	count, err := e.counters.Count(ctx, tool.Slug, req.Key(), ratelimit.PeriodDay)
	if err != nil {
		return 0, err
	}

	remaining := quota - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (e *Engine) policyFor(tool GatedTool) Policy {
	if tool.Policy != nil {
		return tool.Policy
	}
	return e.defaultPolicy
}

func (e *Engine) resolveTier(ctx context.Context, tool GatedTool, req tier.Requester) (tier.Tier, *Result) {
	requesterTier, err := e.resolver.ResolveTier(ctx, req)
	if err != nil {
		return tier.Free, &Result{
			Allowed: false,
			Reason:  ReasonStorageError,
			Err:     err,
		}
	}
	return requesterTier, nil
}
