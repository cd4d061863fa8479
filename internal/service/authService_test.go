package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/biztools-dev/biztools/internal/models"
	"github.com/biztools-dev/biztools/internal/tier"
)

// fakeUserStore keeps users in memory, keyed by email.
type fakeUserStore struct {
	byEmail map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUserStore) FindById(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.byEmail))
	for _, u := range f.byEmail {
		users = append(users, *u)
	}
	return users, nil
}

func TestRegisterStoresTierAndHashedPassword(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, "test-secret", 24)

	user, err := svc.Register(context.Background(), "owner@example.com", "hunter2hunter2", "Owner", tier.Pro)
	require.NoError(t, err)

	assert.Equal(t, "pro", user.Tier)
	assert.Equal(t, "member", user.Role)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, "test-secret", 24)

	_, err := svc.Register(context.Background(), "owner@example.com", "hunter2hunter2", "Owner", tier.Free)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "owner@example.com", "otherpassword", "Clone", tier.Free)
	assert.Error(t, err)
}

func TestLoginTokenCarriesTierClaim(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, "test-secret", 24)

	_, err := svc.Register(context.Background(), "owner@example.com", "hunter2hunter2", "Owner", tier.Starter)
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "owner@example.com", "hunter2hunter2")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", claims["email"])
	assert.Equal(t, "starter", claims["tier"])
	assert.Equal(t, "member", claims["role"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, "test-secret", 24)

	_, err := svc.Register(context.Background(), "owner@example.com", "hunter2hunter2", "Owner", tier.Free)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "owner@example.com", "not-the-password")
	assert.Error(t, err)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	store := newFakeUserStore()
	issuer := NewAuthService(store, "issuer-secret", 24)
	verifier := NewAuthService(store, "other-secret", 24)

	_, err := issuer.Register(context.Background(), "owner@example.com", "hunter2hunter2", "Owner", tier.Free)
	require.NoError(t, err)

	token, err := issuer.Login(context.Background(), "owner@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
