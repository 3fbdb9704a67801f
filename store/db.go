// Package store persists users, restaurants and menus with gorm. Menus are kept as
// per-level arena tables so every catalog mutation touches only the rows it addresses.
package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"tomato-api/models"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate record")
	ErrStale     = errors.New("store: record changed concurrently")
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Menu{},
		&models.CategoryRow{},
		&models.SubCategoryRow{},
		&models.ItemRow{},
	)
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicate(err):
		return ErrDuplicate
	default:
		return err
	}
}
