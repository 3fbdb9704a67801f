// Package menu models a restaurant's nested catalog (category → sub-category → item),
// addressed by id-paths, together with the pure validation and mutation rules every
// store applies.
package menu

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrNotFound         = errors.New("menu: node not found")
	ErrDuplicateName    = errors.New("menu: name already used by a sibling")
	ErrDuplicateID      = errors.New("menu: duplicate node id")
	ErrInvalidName      = errors.New("menu: invalid name")
	ErrInvalidPath      = errors.New("menu: invalid path")
	ErrImmutable        = errors.New("menu: field cannot be changed after creation")
	ErrConcurrentUpdate = errors.New("menu: concurrent update, retry")
)

const maxNameLength = 100

// Document is the persisted nested-array form of a menu.
type Document struct {
	RestaurantID string     `json:"restaurantId" bson:"restaurantId"`
	Version      int64      `json:"version" bson:"version"`
	Categories   []Category `json:"category" bson:"category"`
}

type Category struct {
	ID            string        `json:"id" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	SubCategories []SubCategory `json:"subCategory" bson:"subCategory"`
}

type SubCategory struct {
	ID    string `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Items []Item `json:"item" bson:"item"`
}

type Item struct {
	ID              string   `json:"id" bson:"_id"`
	Name            string   `json:"name" bson:"name"`
	Description     string   `json:"description" bson:"description"`
	Rate            *float64 `json:"rate,omitempty" bson:"rate,omitempty"`
	IsVeg           bool     `json:"isVeg" bson:"isVeg"`
	IsItemAvailable bool     `json:"isItemAvailable" bson:"isItemAvailable"`
}

// NormalizeName trims and lower-cases a node name. Names are compared and stored in this
// form only; the length limit counts characters, not bytes.
func NormalizeName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || utf8.RuneCountInString(n) > maxNameLength {
		return "", ErrInvalidName
	}
	return n, nil
}

func checkNormalized(name string) error {
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if n != name {
		return ErrInvalidName
	}
	return nil
}
