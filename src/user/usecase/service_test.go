package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/blockhaven/backend/src/logger"
	"github.com/blockhaven/backend/src/user/domain"
	"github.com/blockhaven/backend/src/user/usecase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func newUserService(repo domain.Repository) *usecase.Service {
	return usecase.NewService(repo, logger.New("test"), "test-secret", time.Hour)
}

func TestAuthenticateRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)

	created, err := svc.Register(context.Background(), "admin@example.com", "s3cret", true)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", created.PasswordHash, "password must be stored hashed")

	token, u, err := svc.Authenticate(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.Subject)
	assert.True(t, claims.IsAdmin)
}

func TestEnsureAdminSeedsAccountOnce(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "s3cret"))

	u, err := repo.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.True(t, u.IsActive)

	token, _, err := svc.Authenticate(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)
	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestEnsureAdminKeepsExistingCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "original"))

	// A restart with a changed env password must not overwrite the account.
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "rotated"))

	_, _, err := svc.Authenticate(context.Background(), "admin@example.com", "original")
	assert.NoError(t, err)
	_, _, err = svc.Authenticate(context.Background(), "admin@example.com", "rotated")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)
	_, err := svc.Register(context.Background(), "user@example.com", "correct", false)
	require.NoError(t, err)

	_, _, wrongPassword := svc.Authenticate(context.Background(), "user@example.com", "wrong")
	_, _, unknownEmail := svc.Authenticate(context.Background(), "ghost@example.com", "correct")

	assert.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactiveAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)
	u, err := svc.Register(context.Background(), "user@example.com", "s3cret", false)
	require.NoError(t, err)
	u.IsActive = false

	_, _, err = svc.Authenticate(context.Background(), "user@example.com", "s3cret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)
	_, err := svc.Register(context.Background(), "user@example.com", "s3cret", false)
	require.NoError(t, err)

	token, _, err := svc.Authenticate(context.Background(), "user@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token + "x")
	assert.ErrorIs(t, err, usecase.ErrInvalidToken)

	other := usecase.NewService(repo, logger.New("test"), "other-secret", time.Hour)
	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, usecase.ErrInvalidToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	repo := newFakeUserRepo()
	expired := usecase.NewService(repo, logger.New("test"), "test-secret", -time.Minute)
	_, err := expired.Register(context.Background(), "user@example.com", "s3cret", false)
	require.NoError(t, err)

	token, _, err := expired.Authenticate(context.Background(), "user@example.com", "s3cret")
	require.NoError(t, err)

	_, err = expired.VerifyToken(token)
	assert.ErrorIs(t, err, usecase.ErrInvalidToken)
}
