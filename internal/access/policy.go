package access

import (
	"github.com/biztools-dev/biztools/internal/ratelimit"
	"github.com/biztools-dev/biztools/internal/tier"
)

// Unlimited marks a quota with no ceiling.
const Unlimited = -1

// Policy maps a subscription tier to its per-period quotas.
// A quota of Unlimited (-1) means no ceiling for that period.
type Policy map[tier.Tier]map[ratelimit.Period]int

// DefaultPolicy is the catalog-wide default: free users get 10 uses per day,
// starter 100, pro and business are unlimited. Tools may override it in
// their descriptor.
func DefaultPolicy() Policy {
	return Policy{
		tier.Free:     {ratelimit.PeriodDay: 10},
		tier.Starter:  {ratelimit.PeriodDay: 100},
		tier.Pro:      {ratelimit.PeriodDay: Unlimited},
		tier.Business: {ratelimit.PeriodDay: Unlimited},
	}
}

// Quota returns the ceiling for a tier and period. Tiers or periods not
// covered by the policy fall back to 10 per day.
func (p Policy) Quota(t tier.Tier, period ratelimit.Period) int {
	if periods, ok := p[t]; ok {
		if q, ok := periods[period]; ok {
			return q
		}
	}
	return 10
}

// GatedTool is the slice of a tool descriptor the policy engine needs:
// which tier unlocks it and which quota policy applies.
type GatedTool struct {
	Slug         string
	RequiredTier tier.Tier
	Policy       Policy
}
