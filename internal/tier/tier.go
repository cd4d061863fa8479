package tier

import (
	"context"
	"fmt"
)

// Tier is a subscription level. Values are ordered by entitlement, so a
// direct comparison is enough to decide whether one tier covers another.
type Tier int

const (
	Free Tier = iota
	Starter
	Pro
	Business
)

func (t Tier) String() string {
	switch t {
	case Free:
		return "free"
	case Starter:
		return "starter"
	case Pro:
		return "pro"
	case Business:
		return "business"
	default:
		return "unknown"
	}
}

// Covers reports whether a requester holding tier t may use a tool
// that requires the given tier.
func (t Tier) Covers(required Tier) bool {
	return t >= required
}

// Parse converts a stored/configured tier name into a Tier.
// Unknown names are an error; callers decide the fallback.
func Parse(s string) (Tier, error) {
	switch s {
	case "free", "":
		return Free, nil
	case "starter":
		return Starter, nil
	case "pro":
		return Pro, nil
	case "business":
		return Business, nil
	default:
		return Free, fmt.Errorf("unknown tier %q", s)
	}
}

// All lists tiers in ascending entitlement order.
func All() []Tier {
	return []Tier{Free, Starter, Pro, Business}
}

// Resolver looks up the current subscription tier for a requester.
// Implemented by the service layer (user records, API keys); a static
// implementation is provided for tests and anonymous-only deployments.
type Resolver interface {
	ResolveTier(ctx context.Context, r Requester) (Tier, error)
}

// StaticResolver always resolves to a fixed tier.
type StaticResolver struct {
	Tier Tier
}

func (s StaticResolver) ResolveTier(ctx context.Context, r Requester) (Tier, error) {
	return s.Tier, nil
}
