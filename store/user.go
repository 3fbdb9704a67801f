package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tomato-api/models"
)

type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts u. A clash on email or phone number returns ErrDuplicate.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

// Taken reports whether email or phoneNumber already belongs to an account.
func (s *UserStore) Taken(ctx context.Context, email, phoneNumber string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR phone_number = ?", email, phoneNumber).
		Count(&n).Error
	return n > 0, err
}

func (s *UserStore) ByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// VerifyEmail consumes a verification token. Unknown, empty and already consumed tokens
// all return ErrNotFound.
func (s *UserStore) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("verification_token = ? AND is_verified = ?", token, false).
		Updates(map[string]interface{}{"is_verified": true, "verification_token": ""})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword swaps the hash only if it still equals oldHash.
func (s *UserStore) UpdatePassword(ctx context.Context, id, oldHash, newHash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND password_hash = ?", id, oldHash).
		Update("password_hash", newHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// SetResetToken stores a password reset token for the account registered with email.
func (s *UserStore) SetResetToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{"reset_token": token, "reset_expires_at": expiresAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword consumes an unexpired reset token and sets a new password hash.
func (s *UserStore) ResetPassword(ctx context.Context, token, hash string, now time.Time) error {
	if token == "" {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("reset_token = ? AND reset_expires_at > ?", token, now).
		Updates(map[string]interface{}{
			"password_hash":    hash,
			"reset_token":      "",
			"reset_expires_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
