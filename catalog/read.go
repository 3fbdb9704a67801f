package catalog

import (
	"context"

	"go.uber.org/zap"

	"tomato-api/menu"
)

// Menu returns the whole menu document of a restaurant, through the cache when one is
// configured. The cache generation is read before the snapshot so a fill that raced a
// write is rejected by the cache.
func (e *Engine) Menu(ctx context.Context, restaurantID string) (*menu.Document, error) {
	if e.cache == nil {
		tree, err := e.snapshot(ctx, restaurantID)
		if err != nil {
			return nil, err
		}
		return tree.Document(), nil
	}

	doc, ok, err := e.cache.Get(ctx, restaurantID)
	if err != nil {
		e.logger.Warn("failed to read menu cache", zap.String("restaurant_id", restaurantID), zap.Error(err))
	}
	if ok {
		return doc, nil
	}
	gen, genErr := e.cache.Generation(ctx, restaurantID)
	if genErr != nil {
		e.logger.Warn("failed to read menu cache generation", zap.String("restaurant_id", restaurantID), zap.Error(genErr))
	}
	tree, err := e.snapshot(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	doc = tree.Document()
	if genErr == nil {
		if err := e.cache.Set(ctx, doc, gen); err != nil {
			e.logger.Warn("failed to fill menu cache", zap.String("restaurant_id", restaurantID), zap.Error(err))
		}
	}
	return doc, nil
}

func (e *Engine) ResolveCategory(ctx context.Context, restaurantID, categoryID string) (menu.Node, error) {
	return e.resolve(ctx, restaurantID, menu.CategoryPath(categoryID))
}

func (e *Engine) ResolveSubCategory(ctx context.Context, restaurantID, categoryID, subCategoryID string) (menu.Node, error) {
	return e.resolve(ctx, restaurantID, menu.SubCategoryPath(categoryID, subCategoryID))
}

func (e *Engine) ResolveItem(ctx context.Context, restaurantID, categoryID, subCategoryID, itemID string) (menu.Node, error) {
	return e.resolve(ctx, restaurantID, menu.ItemPath(categoryID, subCategoryID, itemID))
}

func (e *Engine) resolve(ctx context.Context, restaurantID string, p menu.Path) (menu.Node, error) {
	tree, err := e.snapshot(ctx, restaurantID)
	if err != nil {
		return menu.Node{}, err
	}
	n, err := tree.Resolve(p)
	if err != nil {
		return menu.Node{}, e.fail(menu.Remove{Path: p}, err)
	}
	return n, nil
}

// CreateMenu creates the empty menu of a newly registered restaurant.
func (e *Engine) CreateMenu(ctx context.Context, restaurantID string) error {
	return e.store.Create(ctx, restaurantID)
}
