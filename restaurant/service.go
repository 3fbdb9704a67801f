// Package restaurant registers restaurants and drives their verification and
// availability lifecycle.
package restaurant

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tomato-api/apperror"
	"tomato-api/auth"
	"tomato-api/models"
	"tomato-api/notify"
	"tomato-api/statemachine"
	"tomato-api/store"
)

type Store interface {
	Create(ctx context.Context, r *models.Restaurant) error
	Delete(ctx context.Context, id string) error
	ByID(ctx context.Context, id string) (*models.Restaurant, error)
	List(ctx context.Context, f store.ListFilter) ([]models.Restaurant, error)
	Verify(ctx context.Context, token string, availableForOrder bool) (*models.Restaurant, error)
	SetAvailability(ctx context.Context, id string, from, to bool) error
}

// Menus creates the empty menu that every restaurant owns.
type Menus interface {
	CreateMenu(ctx context.Context, restaurantID string) error
}

type Notifier interface {
	Enqueue(m notify.Mail) bool
}

type Service struct {
	restaurants Store
	menus       Menus
	notifier    Notifier
	templates   notify.Templates
	logger      *zap.Logger
}

func NewService(restaurants Store, menus Menus, notifier Notifier, templates notify.Templates, logger *zap.Logger) *Service {
	return &Service{
		restaurants: restaurants,
		menus:       menus,
		notifier:    notifier,
		templates:   templates,
		logger:      logger,
	}
}

type RegisterInput struct {
	Name        string
	Email       string
	Address     string
	City        string
	State       string
	ZipCode     string
	PhoneNumber string
	Latitude    string
	Longitude   string
}

// Register creates an unverified, closed restaurant owned by userID together with its
// empty menu, then queues the verification mail.
func (s *Service) Register(ctx context.Context, userID string, in RegisterInput) (*models.Restaurant, error) {
	if userID == "" {
		return nil, apperror.NotAuthenticated("Not authenticated")
	}
	token, err := auth.RandomToken()
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("verification token: %w", err))
	}
	r := &models.Restaurant{
		UserID:                 userID,
		Name:                   in.Name,
		Email:                  in.Email,
		Address:                in.Address,
		City:                   in.City,
		State:                  in.State,
		ZipCode:                in.ZipCode,
		PhoneNumber:            in.PhoneNumber,
		Position:               models.Position{Latitude: in.Latitude, Longitude: in.Longitude},
		EmailVerificationToken: token,
	}
	if err := s.restaurants.Create(ctx, r); err != nil {
		return nil, apperror.Internal(fmt.Errorf("create restaurant: %w", err))
	}
	if err := s.menus.CreateMenu(ctx, r.ID); err != nil {
		if derr := s.restaurants.Delete(ctx, r.ID); derr != nil {
			s.logger.Error("failed to roll back restaurant without menu", zap.String("restaurant_id", r.ID), zap.Error(derr))
		}
		return nil, apperror.Internal(fmt.Errorf("create menu: %w", err))
	}

	s.notifier.Enqueue(s.templates.RestaurantVerificationMail(r.Email, r.Name, token))
	return r, nil
}

// Verify consumes a verification token. Invalid and already used tokens are NotFound.
// The restaurant lands in whatever state the lifecycle assigns to a verified email.
func (s *Service) Verify(ctx context.Context, token string) (*models.Restaurant, error) {
	to, err := statemachine.Next(statemachine.StateUnverified, statemachine.EventVerifyEmail)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	r, err := s.restaurants.Verify(ctx, token, to.IsAvailable())
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("Account is already verified or invalid url")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("verify restaurant: %w", err))
	}
	return r, nil
}

// ToggleAvailability opens a closed restaurant or closes an open one and returns the new
// isAvailableForOrder value. Only the owner may toggle, and only once verified.
func (s *Service) ToggleAvailability(ctx context.Context, userID, restaurantID string) (bool, error) {
	r, err := s.Get(ctx, restaurantID)
	if err != nil {
		return false, err
	}
	if r.UserID != userID {
		return false, apperror.NotOwner("You are not authorized to modify this restaurant")
	}

	from := statemachine.StateOf(r.IsEmailVerified, r.IsAvailableForOrder)
	to, err := statemachine.Next(from, statemachine.EventToggleAvailability)
	if err != nil {
		return false, apperror.Wrap(apperror.KindNotAllowed, "Activate email account to open restaurant for orders", err)
	}

	err = s.restaurants.SetAvailability(ctx, r.ID, from.IsAvailable(), to.IsAvailable())
	if errors.Is(err, store.ErrStale) {
		return false, apperror.Conflict("Restaurant availability changed concurrently, please retry")
	}
	if err != nil {
		return false, apperror.Internal(fmt.Errorf("set availability: %w", err))
	}
	return to.IsAvailable(), nil
}

func (s *Service) Get(ctx context.Context, restaurantID string) (*models.Restaurant, error) {
	r, err := s.restaurants.ByID(ctx, restaurantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("Restaurant does not exist")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("get restaurant: %w", err))
	}
	return r, nil
}

// List returns verified restaurants, optionally only those taking orders.
func (s *Service) List(ctx context.Context, availableOnly bool) ([]models.Restaurant, error) {
	out, err := s.restaurants.List(ctx, store.ListFilter{VerifiedOnly: true, AvailableOnly: availableOnly})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list restaurants: %w", err))
	}
	return out, nil
}

// ListForUser returns every restaurant owned by userID, verified or not.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Restaurant, error) {
	out, err := s.restaurants.List(ctx, store.ListFilter{UserID: userID})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list restaurants of user: %w", err))
	}
	return out, nil
}
