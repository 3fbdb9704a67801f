// Package account implements the user lifecycle: signup, email verification, login and
// password change or reset.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tomato-api/apperror"
	"tomato-api/auth"
	"tomato-api/models"
	"tomato-api/notify"
	"tomato-api/store"
)

const resetTTL = time.Hour

type Store interface {
	Create(ctx context.Context, u *models.User) error
	Taken(ctx context.Context, email, phoneNumber string) (bool, error)
	ByID(ctx context.Context, id string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) error
	UpdatePassword(ctx context.Context, id, oldHash, newHash string) error
	SetResetToken(ctx context.Context, email, token string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, token, hash string, now time.Time) error
}

type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type Issuer interface {
	Issue(userID, email string) (string, error)
}

type Notifier interface {
	Enqueue(m notify.Mail) bool
}

type Service struct {
	users     Store
	hasher    Hasher
	tokens    Issuer
	notifier  Notifier
	templates notify.Templates
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(users Store, hasher Hasher, tokens Issuer, notifier Notifier, templates notify.Templates, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		notifier:  notifier,
		templates: templates,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	PhoneNumber     string
}

type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unverified account and queues the verification mail.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	taken, err := s.users.Taken(ctx, email, in.PhoneNumber)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("check existing user: %w", err))
	}
	if taken {
		return nil, apperror.Conflict("User account with same email or phone number exists")
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperror.InvalidInput("Password does not match")
	}

	token, err := auth.RandomToken()
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("verification token: %w", err))
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("hash password: %w", err))
	}
	u := &models.User{
		Name:              strings.TrimSpace(in.Name),
		Email:             email,
		PasswordHash:      hash,
		PhoneNumber:       in.PhoneNumber,
		VerificationToken: token,
	}
	err = s.users.Create(ctx, u)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperror.Conflict("User account with same email or phone number exists")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("create user: %w", err))
	}

	s.notifier.Enqueue(s.templates.UserVerificationMail(u.Email, u.Name, token))
	return u, nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	err := s.users.VerifyEmail(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound("Token is not valid")
	}
	if err != nil {
		return apperror.Internal(fmt.Errorf("verify email: %w", err))
	}
	return nil
}

// Login checks the credentials and issues a bearer token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.ByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotAuthenticated("Invalid email or password")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load user: %w", err))
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, apperror.NotAuthenticated("Invalid email or password")
	}
	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("issue token: %w", err))
	}
	return &Session{Token: "Bearer " + token, UserID: u.ID}, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.users.ByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotAuthenticated("User not found")
	}
	if err != nil {
		return apperror.Internal(fmt.Errorf("load user: %w", err))
	}
	if !s.hasher.Verify(current, u.PasswordHash) {
		return apperror.NotAuthenticated("Invalid current password")
	}
	if s.hasher.Verify(next, u.PasswordHash) {
		return apperror.Conflict("New password is same as old password")
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return apperror.Internal(fmt.Errorf("hash password: %w", err))
	}
	err = s.users.UpdatePassword(ctx, u.ID, u.PasswordHash, hash)
	if errors.Is(err, store.ErrStale) {
		return apperror.Conflict("Password was changed concurrently, please retry")
	}
	if err != nil {
		return apperror.Internal(fmt.Errorf("update password: %w", err))
	}
	s.notifier.Enqueue(s.templates.PasswordChangedMail(u.Email))
	return nil
}

// RequestPasswordReset stores a one-hour reset token and queues the reset link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	token, err := auth.RandomToken()
	if err != nil {
		return apperror.Internal(fmt.Errorf("reset token: %w", err))
	}
	err = s.users.SetResetToken(ctx, email, token, s.now().Add(resetTTL))
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound("User account does not exist")
	}
	if err != nil {
		return apperror.Internal(fmt.Errorf("store reset token: %w", err))
	}
	s.notifier.Enqueue(s.templates.PasswordResetMail(email, token))
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if password != confirm {
		return apperror.InvalidInput("Password does not match")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperror.Internal(fmt.Errorf("hash password: %w", err))
	}
	err = s.users.ResetPassword(ctx, token, hash, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound("Invalid reset token")
	}
	if err != nil {
		return apperror.Internal(fmt.Errorf("reset password: %w", err))
	}
	return nil
}
