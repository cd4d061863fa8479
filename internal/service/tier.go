package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/biztools-dev/biztools/internal/models"
	"github.com/biztools-dev/biztools/internal/storage"
	"github.com/biztools-dev/biztools/internal/tier"
)

const tierCacheTTL = 5 * time.Minute

// userTierStore is the slice of the user repository tier resolution needs.
type userTierStore interface {
	FindById(ctx context.Context, id string) (*models.User, error)
	UpdateTier(ctx context.Context, id string, tier string) error
}

// keyTierStore is the slice of the API key repository tier resolution needs.
type keyTierStore interface {
	FindByID(ctx context.Context, id string) (*models.APIKey, error)
}

// TierService resolves the subscription tier of a requester. API keys carry
// their own tier; authenticated users carry theirs; anonymous visitors are
// always free tier. Resolved tiers are cached in Redis so the hot path does
// not hit Postgres on every invocation.
type TierService struct {
	users userTierStore
	keys  keyTierStore
	redis *storage.RedisClient
}

func NewTierService(users userTierStore, keys keyTierStore, redis *storage.RedisClient) *TierService {
	return &TierService{
		users: users,
		keys:  keys,
		redis: redis,
	}
}

func (s *TierService) ResolveTier(ctx context.Context, req tier.Requester) (tier.Tier, error) {
	// The transport layer already established a tier (JWT claim or
	// validated key record); no lookup needed.
	if req.Claimed != nil {
		return *req.Claimed, nil
	}

	if req.Anonymous() {
		return tier.Free, nil
	}

	cacheKey := fmt.Sprintf("tier:cache:%s", req.Key())
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey); err == nil && cached != "" {
			if t, err := tier.Parse(cached); err == nil {
				return t, nil
			}
		}
	}

	resolved, err := s.lookup(ctx, req)
	if err != nil {
		return tier.Free, err
	}

	if s.redis != nil {
		s.redis.Set(ctx, cacheKey, resolved.String(), tierCacheTTL)
	}

	return resolved, nil
}

func (s *TierService) lookup(ctx context.Context, req tier.Requester) (tier.Tier, error) {
	if req.APIKeyID != nil {
		key, err := s.keys.FindByID(ctx, req.APIKeyID.String())
		if err != nil {
			return tier.Free, err
		}
		if key == nil || !key.IsActive {
			return tier.Free, nil
		}
		return tier.Parse(key.Tier)
	}

	if req.UserID != nil {
		user, err := s.users.FindById(ctx, req.UserID.String())
		if err != nil {
			return tier.Free, err
		}
		if user == nil {
			return tier.Free, nil
		}
		return tier.Parse(user.Tier)
	}

	return tier.Free, nil
}

// UpdateUserTier changes a user's subscription tier and drops the cached
// resolution so the change applies immediately. Outstanding JWTs keep their
// old tier claim until they expire.
func (s *TierService) UpdateUserTier(ctx context.Context, userID uuid.UUID, t tier.Tier) error {
	if err := s.users.UpdateTier(ctx, userID.String(), t.String()); err != nil {
		return err
	}

	req := tier.Requester{UserID: &userID}
	s.InvalidateTier(ctx, req.Key())
	return nil
}

// InvalidateTier drops the cached tier for a requester key, used after tier
// changes so upgrades apply without waiting for the TTL.
func (s *TierService) InvalidateTier(ctx context.Context, requesterKey string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, fmt.Sprintf("tier:cache:%s", requesterKey))
}
