package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                string     `json:"id" gorm:"primaryKey;size:36"`
	Name              string     `json:"name" gorm:"not null"`
	Email             string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash      string     `json:"-" gorm:"not null"`
	PhoneNumber       string     `json:"phoneNumber" gorm:"uniqueIndex;not null"`
	IsVerified        bool       `json:"isVerified" gorm:"not null;default:false"`
	VerificationToken string     `json:"-" gorm:"index"`
	ResetToken        string     `json:"-" gorm:"index"`
	ResetExpiresAt    *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
