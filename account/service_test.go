package account

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tomato-api/apperror"
	"tomato-api/auth"
	"tomato-api/notify"
	"tomato-api/store"
	"tomato-api/store/storetest"
)

type outbox struct {
	mu    sync.Mutex
	mails []notify.Mail
}

func (o *outbox) Enqueue(m notify.Mail) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mails = append(o.mails, m)
	return true
}

func (o *outbox) last() notify.Mail {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mails[len(o.mails)-1]
}

// linkToken returns the trailing token of the link in a mail.
func linkToken(m notify.Mail) string {
	return m.Text[strings.LastIndex(m.Text, "/")+1:]
}

type fixture struct {
	svc    *Service
	tokens *auth.Tokens
	out    *outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens := auth.NewTokens("secret", time.Hour)
	out := &outbox{}
	svc := NewService(
		store.NewUserStore(storetest.Open(t)),
		auth.NewHasher(bcrypt.MinCost),
		tokens,
		out,
		notify.Templates{From: "no-reply@tomato.dev", PublicURL: "http://localhost:8080"},
		zap.NewNop(),
	)
	return &fixture{svc: svc, tokens: tokens, out: out}
}

var signup = SignupInput{
	Name:            "Asha",
	Email:           "Asha@Example.com",
	Password:        "pass-1234",
	ConfirmPassword: "pass-1234",
	PhoneNumber:     "9000000001",
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.svc.Signup(ctx, signup)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.False(t, u.IsVerified)
	assert.Equal(t, u.VerificationToken, linkToken(f.out.last()))

	session, err := f.svc.Login(ctx, "asha@example.com", "pass-1234")
	require.NoError(t, err)
	assert.Equal(t, u.ID, session.UserID)
	require.True(t, strings.HasPrefix(session.Token, "Bearer "))
	claims, err := f.tokens.Verify(strings.TrimPrefix(session.Token, "Bearer "))
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = f.svc.Login(ctx, "asha@example.com", "wrong")
	assert.True(t, apperror.Is(err, apperror.KindNotAuthenticated))
	_, err = f.svc.Login(ctx, "nobody@example.com", "pass-1234")
	assert.True(t, apperror.Is(err, apperror.KindNotAuthenticated))
}

func TestSignupRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Signup(ctx, signup)
	require.NoError(t, err)

	t.Run("SameEmail", func(t *testing.T) {
		in := signup
		in.PhoneNumber = "9000000002"
		_, err := f.svc.Signup(ctx, in)
		assert.True(t, apperror.Is(err, apperror.KindConflict))
	})

	t.Run("PasswordMismatch", func(t *testing.T) {
		in := signup
		in.Email, in.PhoneNumber, in.ConfirmPassword = "new@example.com", "9000000003", "other"
		_, err := f.svc.Signup(ctx, in)
		assert.True(t, apperror.Is(err, apperror.KindInvalidInput))
	})
}

func TestVerifyEmailIsOneShot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u, err := f.svc.Signup(ctx, signup)
	require.NoError(t, err)

	require.NoError(t, f.svc.VerifyEmail(ctx, u.VerificationToken))
	assert.True(t, apperror.Is(f.svc.VerifyEmail(ctx, u.VerificationToken), apperror.KindNotFound))
	assert.True(t, apperror.Is(f.svc.VerifyEmail(ctx, ""), apperror.KindNotFound))
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u, err := f.svc.Signup(ctx, signup)
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, u.ID, "wrong", "next-pass")
	assert.True(t, apperror.Is(err, apperror.KindNotAuthenticated))

	err = f.svc.ChangePassword(ctx, u.ID, "pass-1234", "pass-1234")
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, "pass-1234", "next-pass"))
	_, err = f.svc.Login(ctx, signup.Email, "next-pass")
	assert.NoError(t, err)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Signup(ctx, signup)
	require.NoError(t, err)

	assert.True(t, apperror.Is(f.svc.RequestPasswordReset(ctx, "nobody@example.com"), apperror.KindNotFound))

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "asha@example.com"))
	token := linkToken(f.out.last())
	require.Len(t, token, 64)

	err = f.svc.ResetPassword(ctx, token, "fresh-pass", "other")
	assert.True(t, apperror.Is(err, apperror.KindInvalidInput))

	require.NoError(t, f.svc.ResetPassword(ctx, token, "fresh-pass", "fresh-pass"))
	assert.True(t, apperror.Is(f.svc.ResetPassword(ctx, token, "again-pass", "again-pass"), apperror.KindNotFound))

	_, err = f.svc.Login(ctx, signup.Email, "fresh-pass")
	assert.NoError(t, err)

	t.Run("Expired", func(t *testing.T) {
		require.NoError(t, f.svc.RequestPasswordReset(ctx, "asha@example.com"))
		token := linkToken(f.out.last())
		f.svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
		defer func() { f.svc.now = func() time.Time { return time.Now().UTC() } }()

		err := f.svc.ResetPassword(ctx, token, "late-pass", "late-pass")
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})
}
