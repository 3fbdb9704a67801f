package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Position keeps coordinates as decimal strings so their precision round-trips untouched.
type Position struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

type Restaurant struct {
	ID                     string    `json:"id" gorm:"primaryKey;size:36"`
	UserID                 string    `json:"userId" gorm:"index;not null"`
	Name                   string    `json:"name" gorm:"not null"`
	Email                  string    `json:"email" gorm:"not null"`
	Address                string    `json:"address" gorm:"not null"`
	City                   string    `json:"city" gorm:"not null"`
	State                  string    `json:"state" gorm:"not null"`
	ZipCode                string    `json:"zipCode" gorm:"not null"`
	PhoneNumber            string    `json:"phoneNumber" gorm:"not null"`
	Position               Position  `json:"position" gorm:"embedded;embeddedPrefix:position_"`
	IsEmailVerified        bool      `json:"isEmailVerified" gorm:"not null;default:false"`
	IsAvailableForOrder    bool      `json:"isAvailableForOrder" gorm:"not null;default:false"`
	EmailVerificationToken string    `json:"-" gorm:"index"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func (r *Restaurant) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
