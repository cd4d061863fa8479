package tier

import "github.com/google/uuid"

// Requester identifies who is invoking a tool. Authenticated users and API
// keys carry a stable ID; anonymous visitors are keyed by network address.
type Requester struct {
	UserID   *uuid.UUID
	APIKeyID *uuid.UUID
	IP       string

	// Claimed is a tier already established by the transport layer (a
	// signed JWT claim or a validated API key record). When set, tier
	// resolution trusts it and skips the database.
	Claimed *Tier
}

// Key returns the string used to attribute usage counters. Identity wins
// over network address when both are present.
func (r Requester) Key() string {
	if r.UserID != nil {
		return "user:" + r.UserID.String()
	}
	if r.APIKeyID != nil {
		return "key:" + r.APIKeyID.String()
	}
	return "ip:" + r.IP
}

// Valid reports whether the requester resolves to at least one usable key.
func (r Requester) Valid() bool {
	return r.UserID != nil || r.APIKeyID != nil || r.IP != ""
}

// Anonymous reports whether no authenticated identity is attached.
func (r Requester) Anonymous() bool {
	return r.UserID == nil && r.APIKeyID == nil
}
