package models

import "time"

// Menu is the per-restaurant root of the catalog. Version is bumped by every committed
// mutation and doubles as the row that serializes writers on one menu.
type Menu struct {
	ID           string    `gorm:"primaryKey;size:36"`
	RestaurantID string    `gorm:"uniqueIndex;not null;size:36"`
	Version      int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CategoryRow struct {
	ID       string `gorm:"primaryKey;size:36"`
	MenuID   string `gorm:"not null;size:36;uniqueIndex:idx_category_name,priority:1"`
	Name     string `gorm:"not null;uniqueIndex:idx_category_name,priority:2"`
	Position int64  `gorm:"not null"`
}

func (CategoryRow) TableName() string { return "menu_categories" }

type SubCategoryRow struct {
	ID         string `gorm:"primaryKey;size:36"`
	MenuID     string `gorm:"index;not null;size:36"`
	CategoryID string `gorm:"not null;size:36;uniqueIndex:idx_sub_category_name,priority:1"`
	Name       string `gorm:"not null;uniqueIndex:idx_sub_category_name,priority:2"`
	Position   int64  `gorm:"not null"`
}

func (SubCategoryRow) TableName() string { return "menu_sub_categories" }

type ItemRow struct {
	ID              string   `gorm:"primaryKey;size:36"`
	MenuID          string   `gorm:"index;not null;size:36"`
	SubCategoryID   string   `gorm:"not null;size:36;uniqueIndex:idx_item_name,priority:1"`
	Name            string   `gorm:"not null;uniqueIndex:idx_item_name,priority:2"`
	Description     string
	Rate            *float64
	IsVeg           bool  `gorm:"not null"`
	IsItemAvailable bool  `gorm:"not null;default:false"`
	Position        int64 `gorm:"not null"`
}

func (ItemRow) TableName() string { return "menu_items" }
