// Package catalog runs catalog mutations for a restaurant's menu: ownership first, then a
// pre-check against the current snapshot, then one atomic targeted write in the store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tomato-api/apperror"
	"tomato-api/menu"
	"tomato-api/store"
)

const DefaultMaxAttempts = 5

// Store persists menus. Apply must re-validate op against committed state and either
// perform it completely or not at all.
type Store interface {
	Create(ctx context.Context, restaurantID string) error
	Snapshot(ctx context.Context, restaurantID string) (*menu.Document, error)
	Apply(ctx context.Context, restaurantID string, op menu.Op) (menu.Node, error)
}

// Owners resolves the owning user of a restaurant. Unknown restaurants return
// store.ErrNotFound.
type Owners interface {
	OwnerOf(ctx context.Context, restaurantID string) (string, error)
}

// Cache holds full menu documents for the read endpoint. Invalidate bumps the
// restaurant's generation; Set stores doc only while the generation still equals gen.
type Cache interface {
	Get(ctx context.Context, restaurantID string) (*menu.Document, bool, error)
	Generation(ctx context.Context, restaurantID string) (uint64, error)
	Set(ctx context.Context, doc *menu.Document, gen uint64) error
	Invalidate(ctx context.Context, restaurantID string) error
}

type Engine struct {
	store       Store
	owners      Owners
	cache       Cache
	logger      *zap.Logger
	newID       func() string
	maxAttempts int
}

type Option func(*Engine)

func WithCache(c Cache) Option { return func(e *Engine) { e.cache = c } }

func WithIDGenerator(f func() string) Option { return func(e *Engine) { e.newID = f } }

func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

func NewEngine(s Store, owners Owners, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:       s,
		owners:      owners,
		logger:      logger,
		newID:       uuid.NewString,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// ItemInput is a new item. Name and IsVeg cannot change afterwards.
type ItemInput struct {
	Name            string
	Description     string
	Rate            *float64
	IsVeg           bool
	IsItemAvailable bool
}

// ItemPatch changes the mutable fields of an item; nil fields are kept.
type ItemPatch struct {
	Description     *string
	Rate            *float64
	IsItemAvailable *bool
}

func (e *Engine) AddCategory(ctx context.Context, userID, restaurantID, name string) (menu.Node, error) {
	return e.add(ctx, userID, restaurantID, nil, menu.Spec{Name: name})
}

func (e *Engine) RenameCategory(ctx context.Context, userID, restaurantID, categoryID, name string) (menu.Node, error) {
	return e.rename(ctx, userID, restaurantID, menu.CategoryPath(categoryID), name)
}

func (e *Engine) DeleteCategory(ctx context.Context, userID, restaurantID, categoryID string) (menu.Node, error) {
	return e.mutate(ctx, userID, restaurantID, func() menu.Op {
		return menu.Remove{Path: menu.CategoryPath(categoryID)}
	})
}

func (e *Engine) AddSubCategory(ctx context.Context, userID, restaurantID, categoryID, name string) (menu.Node, error) {
	return e.add(ctx, userID, restaurantID, menu.CategoryPath(categoryID), menu.Spec{Name: name})
}

func (e *Engine) RenameSubCategory(ctx context.Context, userID, restaurantID, categoryID, subCategoryID, name string) (menu.Node, error) {
	return e.rename(ctx, userID, restaurantID, menu.SubCategoryPath(categoryID, subCategoryID), name)
}

func (e *Engine) DeleteSubCategory(ctx context.Context, userID, restaurantID, categoryID, subCategoryID string) (menu.Node, error) {
	return e.mutate(ctx, userID, restaurantID, func() menu.Op {
		return menu.Remove{Path: menu.SubCategoryPath(categoryID, subCategoryID)}
	})
}

func (e *Engine) AddItem(ctx context.Context, userID, restaurantID, categoryID, subCategoryID string, in ItemInput) (menu.Node, error) {
	return e.add(ctx, userID, restaurantID, menu.SubCategoryPath(categoryID, subCategoryID), menu.Spec{
		Name:            in.Name,
		Description:     strings.TrimSpace(in.Description),
		Rate:            in.Rate,
		IsVeg:           in.IsVeg,
		IsItemAvailable: in.IsItemAvailable,
	})
}

func (e *Engine) EditItem(ctx context.Context, userID, restaurantID, categoryID, subCategoryID, itemID string, p ItemPatch) (menu.Node, error) {
	if p.Rate != nil && *p.Rate < 0 {
		return menu.Node{}, apperror.InvalidInput("Rate cannot be negative")
	}
	return e.mutate(ctx, userID, restaurantID, func() menu.Op {
		return menu.EditItem{
			Path:            menu.ItemPath(categoryID, subCategoryID, itemID),
			Description:     p.Description,
			Rate:            p.Rate,
			IsItemAvailable: p.IsItemAvailable,
		}
	})
}

func (e *Engine) DeleteItem(ctx context.Context, userID, restaurantID, categoryID, subCategoryID, itemID string) (menu.Node, error) {
	return e.mutate(ctx, userID, restaurantID, func() menu.Op {
		return menu.Remove{Path: menu.ItemPath(categoryID, subCategoryID, itemID)}
	})
}

func (e *Engine) add(ctx context.Context, userID, restaurantID string, parent menu.Path, spec menu.Spec) (menu.Node, error) {
	name, err := menu.NormalizeName(spec.Name)
	if err != nil {
		return menu.Node{}, apperror.InvalidInput("Name must be between 1 and 100 characters")
	}
	if spec.Rate != nil && *spec.Rate < 0 {
		return menu.Node{}, apperror.InvalidInput("Rate cannot be negative")
	}
	spec.Name = name
	return e.mutate(ctx, userID, restaurantID, func() menu.Op {
		s := spec
		s.ID = e.newID()
		return menu.Add{Parent: parent, Spec: s}
	})
}

func (e *Engine) rename(ctx context.Context, userID, restaurantID string, p menu.Path, name string) (menu.Node, error) {
	normalized, err := menu.NormalizeName(name)
	if err != nil {
		return menu.Node{}, apperror.InvalidInput("Name must be between 1 and 100 characters")
	}
	return e.mutate(ctx, userID, restaurantID, func() menu.Op {
		return menu.Rename{Path: p, Name: normalized}
	})
}

// mutate runs the mutation protocol. next builds the op for each attempt so a retried
// add gets a fresh id.
func (e *Engine) mutate(ctx context.Context, userID, restaurantID string, next func() menu.Op) (menu.Node, error) {
	if err := e.authorize(ctx, userID, restaurantID); err != nil {
		return menu.Node{}, err
	}

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		op := next()

		tree, err := e.snapshot(ctx, restaurantID)
		if err != nil {
			return menu.Node{}, err
		}
		if err := tree.Check(op); err != nil {
			if errors.Is(err, menu.ErrDuplicateID) {
				continue
			}
			return menu.Node{}, e.fail(op, err)
		}

		node, err := e.store.Apply(ctx, restaurantID, op)
		switch {
		case err == nil:
			e.invalidate(ctx, restaurantID)
			return node, nil
		case errors.Is(err, menu.ErrConcurrentUpdate), errors.Is(err, menu.ErrDuplicateID):
			e.logger.Debug("catalog write raced, retrying",
				zap.String("restaurant_id", restaurantID),
				zap.String("target", op.Target().String()),
				zap.Int("attempt", attempt))
			continue
		default:
			return menu.Node{}, e.fail(op, err)
		}
	}
	return menu.Node{}, apperror.Conflict("Menu was changed by another request, please retry")
}

// authorize fails with NotFound for unknown restaurants and NotOwner when userID does not
// own the restaurant. It runs before any catalog read.
func (e *Engine) authorize(ctx context.Context, userID, restaurantID string) error {
	if userID == "" {
		return apperror.NotAuthenticated("Not authenticated")
	}
	if restaurantID == "" {
		return apperror.InvalidInput("restaurantId is required")
	}
	owner, err := e.owners.OwnerOf(ctx, restaurantID)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound("Restaurant not found")
	}
	if err != nil {
		return apperror.Internal(fmt.Errorf("owner of %s: %w", restaurantID, err))
	}
	if owner != userID {
		return apperror.NotOwner("You are not authorized to modify this restaurant")
	}
	return nil
}

func (e *Engine) snapshot(ctx context.Context, restaurantID string) (*menu.Tree, error) {
	doc, err := e.store.Snapshot(ctx, restaurantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("Menu not found")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("snapshot menu %s: %w", restaurantID, err))
	}
	tree, err := menu.NewTree(doc)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("index menu %s: %w", restaurantID, err))
	}
	return tree, nil
}

func (e *Engine) invalidate(ctx context.Context, restaurantID string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, restaurantID); err != nil {
		e.logger.Warn("failed to invalidate menu cache", zap.String("restaurant_id", restaurantID), zap.Error(err))
	}
}

// fail maps a menu or store error for op onto the error taxonomy.
func (e *Engine) fail(op menu.Op, err error) error {
	switch {
	case errors.Is(err, menu.ErrNotFound):
		return apperror.Wrap(apperror.KindNotFound, notFoundMessage(op), err)
	case errors.Is(err, store.ErrNotFound):
		return apperror.Wrap(apperror.KindNotFound, "Menu not found", err)
	case errors.Is(err, menu.ErrDuplicateName):
		return apperror.Wrap(apperror.KindDuplicateName, duplicateMessage(op), err)
	case errors.Is(err, menu.ErrImmutable):
		return apperror.Wrap(apperror.KindInvalidInput, "Item name and isVeg cannot be changed", err)
	case errors.Is(err, menu.ErrInvalidName), errors.Is(err, menu.ErrInvalidPath):
		return apperror.Wrap(apperror.KindInvalidInput, "Invalid catalog request", err)
	default:
		return apperror.Internal(fmt.Errorf("apply %T at %s: %w", op, op.Target(), err))
	}
}

func notFoundMessage(op menu.Op) string {
	level := op.Target().Level()
	if a, ok := op.(menu.Add); ok {
		level = a.Parent.Level()
	}
	return capitalize(level.String()) + " not found"
}

func duplicateMessage(op menu.Op) string {
	return capitalize(op.Target().Level().String()) + " with this name already exists"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
