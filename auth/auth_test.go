package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, h.Verify("s3cret-pass", hash))
	assert.False(t, h.Verify("other", hash))
	assert.False(t, h.Verify("s3cret-pass", "not-a-hash"))
}

func TestNewHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).Cost)
	assert.Equal(t, DefaultCost, NewHasher(99).Cost)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	raw, err := tokens.Issue("user-1", "a@b.c")
	require.NoError(t, err)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestTokensRejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue("user-1", "a@b.c")
	require.NoError(t, err)

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := NewTokens("other", time.Hour).Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		later := &Tokens{Secret: []byte("secret"), TTL: time.Hour, now: func() time.Time {
			return time.Now().Add(2 * time.Hour)
		}}
		_, err := later.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tokens.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("OtherAlgorithm", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "user-1"})
		s, err := forged.SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = tokens.Verify(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken()
	require.NoError(t, err)
	b, err := RandomToken()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
