package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomato-api/models"
	"tomato-api/store"
	"tomato-api/store/storetest"
)

func seedUser(t *testing.T, s *store.UserStore) *models.User {
	t.Helper()
	u := &models.User{
		Name:              "asha",
		Email:             "asha@example.com",
		PasswordHash:      "hash-1",
		PhoneNumber:       "9000000001",
		VerificationToken: "verify-1",
	}
	require.NoError(t, s.Create(context.Background(), u))
	return u
}

func TestUserStoreCreate(t *testing.T) {
	ctx := context.Background()
	s := store.NewUserStore(storetest.Open(t))
	u := seedUser(t, s)
	assert.NotEmpty(t, u.ID)

	taken, err := s.Taken(ctx, "other@example.com", "9000000001")
	require.NoError(t, err)
	assert.True(t, taken)

	dup := &models.User{Name: "b", Email: "asha@example.com", PasswordHash: "x", PhoneNumber: "1"}
	assert.ErrorIs(t, s.Create(ctx, dup), store.ErrDuplicate)
}

func TestUserStoreVerifyEmail(t *testing.T) {
	ctx := context.Background()
	s := store.NewUserStore(storetest.Open(t))
	u := seedUser(t, s)

	require.NoError(t, s.VerifyEmail(ctx, "verify-1"))
	assert.ErrorIs(t, s.VerifyEmail(ctx, "verify-1"), store.ErrNotFound)

	got, err := s.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
}

func TestUserStorePasswordReset(t *testing.T) {
	ctx := context.Background()
	s := store.NewUserStore(storetest.Open(t))
	u := seedUser(t, s)
	now := time.Now().UTC()

	assert.ErrorIs(t, s.SetResetToken(ctx, "nobody@example.com", "r", now), store.ErrNotFound)
	require.NoError(t, s.SetResetToken(ctx, u.Email, "reset-1", now.Add(time.Hour)))

	assert.ErrorIs(t, s.ResetPassword(ctx, "reset-1", "hash-2", now.Add(2*time.Hour)), store.ErrNotFound, "expired")
	require.NoError(t, s.ResetPassword(ctx, "reset-1", "hash-2", now))
	assert.ErrorIs(t, s.ResetPassword(ctx, "reset-1", "hash-3", now), store.ErrNotFound, "consumed")

	got, err := s.ByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", got.PasswordHash)
	assert.Empty(t, got.ResetToken)
}

func TestUserStoreUpdatePassword(t *testing.T) {
	ctx := context.Background()
	s := store.NewUserStore(storetest.Open(t))
	u := seedUser(t, s)

	require.NoError(t, s.UpdatePassword(ctx, u.ID, "hash-1", "hash-2"))
	assert.ErrorIs(t, s.UpdatePassword(ctx, u.ID, "hash-1", "hash-3"), store.ErrStale)
}
