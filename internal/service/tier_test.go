package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biztools-dev/biztools/internal/models"
	"github.com/biztools-dev/biztools/internal/tier"
)

type fakeTierUsers struct {
	users   map[string]*models.User
	updated map[string]string
	lookups int
}

func newFakeTierUsers() *fakeTierUsers {
	return &fakeTierUsers{
		users:   make(map[string]*models.User),
		updated: make(map[string]string),
	}
}

func (f *fakeTierUsers) FindById(ctx context.Context, id string) (*models.User, error) {
	f.lookups++
	return f.users[id], nil
}

func (f *fakeTierUsers) UpdateTier(ctx context.Context, id string, tierName string) error {
	f.updated[id] = tierName
	if u, ok := f.users[id]; ok {
		u.Tier = tierName
	}
	return nil
}

type fakeTierKeys struct {
	keys map[string]*models.APIKey
}

func (f *fakeTierKeys) FindByID(ctx context.Context, id string) (*models.APIKey, error) {
	return f.keys[id], nil
}

func TestResolveTierAnonymousIsFree(t *testing.T) {
	svc := NewTierService(newFakeTierUsers(), &fakeTierKeys{}, nil)

	resolved, err := svc.ResolveTier(context.Background(), tier.Requester{IP: "203.0.113.9"})
	require.NoError(t, err)
	assert.Equal(t, tier.Free, resolved)
}

func TestResolveTierTrustsClaim(t *testing.T) {
	users := newFakeTierUsers()
	svc := NewTierService(users, &fakeTierKeys{}, nil)

	userID := uuid.New()
	claimed := tier.Business
	req := tier.Requester{UserID: &userID, Claimed: &claimed}

	resolved, err := svc.ResolveTier(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, tier.Business, resolved)
	assert.Zero(t, users.lookups, "claimed tier must skip the store")
}

func TestResolveTierFromUserRecord(t *testing.T) {
	users := newFakeTierUsers()
	userID := uuid.New()
	users.users[userID.String()] = &models.User{ID: userID, Tier: "pro"}
	svc := NewTierService(users, &fakeTierKeys{}, nil)

	resolved, err := svc.ResolveTier(context.Background(), tier.Requester{UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, tier.Pro, resolved)
}

func TestResolveTierInactiveKeyFallsBackToFree(t *testing.T) {
	keyID := uuid.New()
	keys := &fakeTierKeys{keys: map[string]*models.APIKey{
		keyID.String(): {ID: keyID, Tier: "business", IsActive: false},
	}}
	svc := NewTierService(newFakeTierUsers(), keys, nil)

	resolved, err := svc.ResolveTier(context.Background(), tier.Requester{APIKeyID: &keyID})
	require.NoError(t, err)
	assert.Equal(t, tier.Free, resolved)
}

func TestUpdateUserTierWritesThrough(t *testing.T) {
	users := newFakeTierUsers()
	userID := uuid.New()
	users.users[userID.String()] = &models.User{ID: userID, Tier: "free"}
	svc := NewTierService(users, &fakeTierKeys{}, nil)

	require.NoError(t, svc.UpdateUserTier(context.Background(), userID, tier.Starter))
	assert.Equal(t, "starter", users.updated[userID.String()])

	resolved, err := svc.ResolveTier(context.Background(), tier.Requester{UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, tier.Starter, resolved)
}
