package store

import (
	"context"

	"gorm.io/gorm"

	"tomato-api/models"
)

type RestaurantStore struct{ db *gorm.DB }

func NewRestaurantStore(db *gorm.DB) *RestaurantStore {
	return &RestaurantStore{db: db}
}

func (s *RestaurantStore) Create(ctx context.Context, r *models.Restaurant) error {
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

// Delete removes a restaurant row. Only registration uses it, to undo a half-finished
// signup.
func (s *RestaurantStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Restaurant{}, "id = ?", id).Error
}

func (s *RestaurantStore) ByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// OwnerOf returns the id of the user owning the restaurant.
func (s *RestaurantStore) OwnerOf(ctx context.Context, restaurantID string) (string, error) {
	var r models.Restaurant
	err := s.db.WithContext(ctx).Select("user_id").Take(&r, "id = ?", restaurantID).Error
	if err != nil {
		return "", translate(err)
	}
	return r.UserID, nil
}

type ListFilter struct {
	UserID        string
	VerifiedOnly  bool
	AvailableOnly bool
}

func (s *RestaurantStore) List(ctx context.Context, f ListFilter) ([]models.Restaurant, error) {
	q := s.db.WithContext(ctx).Model(&models.Restaurant{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.VerifiedOnly {
		q = q.Where("is_email_verified = ?", true)
	}
	if f.AvailableOnly {
		q = q.Where("is_available_for_order = ?", true)
	}
	out := []models.Restaurant{}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Verify consumes an email verification token and returns the verified restaurant.
// The token is cleared in the same conditional update that flips the flag, so a token
// is accepted at most once.
func (s *RestaurantStore) Verify(ctx context.Context, token string, availableForOrder bool) (*models.Restaurant, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var r models.Restaurant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, "email_verification_token = ? AND is_email_verified = ?", token, false).Error; err != nil {
			return translate(err)
		}
		res := tx.Model(&models.Restaurant{}).
			Where("id = ? AND email_verification_token = ? AND is_email_verified = ?", r.ID, token, false).
			Updates(map[string]interface{}{
				"is_email_verified":        true,
				"is_available_for_order":   availableForOrder,
				"email_verification_token": "",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		r.IsEmailVerified = true
		r.IsAvailableForOrder = availableForOrder
		r.EmailVerificationToken = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SetAvailability moves a verified restaurant from one availability value to the other.
// ErrStale means the stored value was no longer from.
func (s *RestaurantStore) SetAvailability(ctx context.Context, id string, from, to bool) error {
	res := s.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("id = ? AND is_email_verified = ? AND is_available_for_order = ?", id, true, from).
		Update("is_available_for_order", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
