package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tomato-api/menu"
	"tomato-api/models"
)

// MenuStore keeps menus in the arena tables. Apply runs every op in its own transaction
// whose first statement bumps the menu version, so writers on one menu are serialized
// while writers on different menus never touch the same row.
type MenuStore struct{ db *gorm.DB }

func NewMenuStore(db *gorm.DB) *MenuStore {
	return &MenuStore{db: db}
}

func (s *MenuStore) Create(ctx context.Context, restaurantID string) error {
	m := models.Menu{ID: uuid.NewString(), RestaurantID: restaurantID}
	return translate(s.db.WithContext(ctx).Create(&m).Error)
}

// Snapshot assembles the nested document of a menu from its rows.
func (s *MenuStore) Snapshot(ctx context.Context, restaurantID string) (*menu.Document, error) {
	var doc *menu.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Menu
		if err := tx.Take(&m, "restaurant_id = ?", restaurantID).Error; err != nil {
			return translate(err)
		}
		var (
			cats  []models.CategoryRow
			subs  []models.SubCategoryRow
			items []models.ItemRow
		)
		if err := tx.Where("menu_id = ?", m.ID).Order("position ASC").Find(&cats).Error; err != nil {
			return err
		}
		if err := tx.Where("menu_id = ?", m.ID).Order("position ASC").Find(&subs).Error; err != nil {
			return err
		}
		if err := tx.Where("menu_id = ?", m.ID).Order("position ASC").Find(&items).Error; err != nil {
			return err
		}
		doc = assemble(&m, cats, subs, items)
		return nil
	})
	return doc, err
}

func assemble(m *models.Menu, cats []models.CategoryRow, subs []models.SubCategoryRow, items []models.ItemRow) *menu.Document {
	itemsBySub := make(map[string][]menu.Item)
	for _, it := range items {
		itemsBySub[it.SubCategoryID] = append(itemsBySub[it.SubCategoryID], itemOf(&it))
	}
	subsByCat := make(map[string][]menu.SubCategory)
	for _, sc := range subs {
		children := itemsBySub[sc.ID]
		if children == nil {
			children = []menu.Item{}
		}
		subsByCat[sc.CategoryID] = append(subsByCat[sc.CategoryID], menu.SubCategory{ID: sc.ID, Name: sc.Name, Items: children})
	}
	doc := &menu.Document{RestaurantID: m.RestaurantID, Version: m.Version, Categories: make([]menu.Category, 0, len(cats))}
	for _, c := range cats {
		children := subsByCat[c.ID]
		if children == nil {
			children = []menu.SubCategory{}
		}
		doc.Categories = append(doc.Categories, menu.Category{ID: c.ID, Name: c.Name, SubCategories: children})
	}
	return doc
}

func itemOf(r *models.ItemRow) menu.Item {
	return menu.Item{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Rate:            r.Rate,
		IsVeg:           r.IsVeg,
		IsItemAvailable: r.IsItemAvailable,
	}
}

// Apply re-validates op against the committed rows and performs it as one unit.
func (s *MenuStore) Apply(ctx context.Context, restaurantID string, op menu.Op) (menu.Node, error) {
	if err := menu.Validate(op); err != nil {
		return menu.Node{}, err
	}
	var out menu.Node
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Menu{}).
			Where("restaurant_id = ?", restaurantID).
			UpdateColumn("version", gorm.Expr("version + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var m models.Menu
		if err := tx.Select("id").Take(&m, "restaurant_id = ?", restaurantID).Error; err != nil {
			return translate(err)
		}
		w := writer{tx: tx, menuID: m.ID}

		var err error
		switch o := op.(type) {
		case menu.Add:
			out, err = w.add(o)
		case menu.Rename:
			out, err = w.rename(o)
		case menu.EditItem:
			out, err = w.editItem(o)
		case menu.Remove:
			out, err = w.remove(o)
		default:
			err = fmt.Errorf("store: unsupported op %T", op)
		}
		return err
	})
	if err != nil {
		if isDuplicate(err) {
			return menu.Node{}, menu.ErrDuplicateName
		}
		return menu.Node{}, err
	}
	return out, nil
}

// writer runs the statements of one op inside its transaction.
type writer struct {
	tx     *gorm.DB
	menuID string
}

// level describes the arena table holding one nesting level.
type level struct {
	model     interface{}
	parentCol string
}

var levels = map[menu.Level]level{
	menu.LevelCategory:    {model: &models.CategoryRow{}, parentCol: "menu_id"},
	menu.LevelSubCategory: {model: &models.SubCategoryRow{}, parentCol: "category_id"},
	menu.LevelItem:        {model: &models.ItemRow{}, parentCol: "sub_category_id"},
}

// parentKey is the value of the parent column for children of the node at p.
func (w writer) parentKey(p menu.Path) string {
	if len(p) == 0 {
		return w.menuID
	}
	return p.ID()
}

// resolve checks every link of p: each id must exist under the previous one on this menu.
func (w writer) resolve(p menu.Path) error {
	for i := range p {
		sub := p[:i+1]
		l := levels[sub.Level()]
		var n int64
		err := w.tx.Model(l.model).
			Where("id = ? AND menu_id = ? AND "+l.parentCol+" = ?", sub.ID(), w.menuID, w.parentKey(sub.Parent())).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n == 0 {
			return menu.ErrNotFound
		}
	}
	return nil
}

func (w writer) siblingNamed(parent menu.Path, name, exceptID string) (bool, error) {
	l := levels[parent.Level()+1]
	q := w.tx.Model(l.model).Where(l.parentCol+" = ? AND name = ?", w.parentKey(parent), name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (w writer) nextPosition(parent menu.Path) (int64, error) {
	l := levels[parent.Level()+1]
	var pos int64
	err := w.tx.Model(l.model).
		Where(l.parentCol+" = ?", w.parentKey(parent)).
		Select("COALESCE(MAX(position), 0)").
		Scan(&pos).Error
	return pos + 1, err
}

func (w writer) add(o menu.Add) (menu.Node, error) {
	if err := w.resolve(o.Parent); err != nil {
		return menu.Node{}, err
	}
	taken, err := w.siblingNamed(o.Parent, o.Spec.Name, "")
	if err != nil {
		return menu.Node{}, err
	}
	if taken {
		return menu.Node{}, menu.ErrDuplicateName
	}
	pos, err := w.nextPosition(o.Parent)
	if err != nil {
		return menu.Node{}, err
	}

	target := o.Target()
	switch target.Level() {
	case menu.LevelCategory:
		err = w.tx.Create(&models.CategoryRow{ID: o.Spec.ID, MenuID: w.menuID, Name: o.Spec.Name, Position: pos}).Error
	case menu.LevelSubCategory:
		err = w.tx.Create(&models.SubCategoryRow{ID: o.Spec.ID, MenuID: w.menuID, CategoryID: o.Parent.ID(), Name: o.Spec.Name, Position: pos}).Error
	case menu.LevelItem:
		row := models.ItemRow{
			ID:              o.Spec.ID,
			MenuID:          w.menuID,
			SubCategoryID:   o.Parent.ID(),
			Name:            o.Spec.Name,
			Description:     o.Spec.Description,
			Rate:            o.Spec.Rate,
			IsVeg:           o.Spec.IsVeg,
			IsItemAvailable: o.Spec.IsItemAvailable,
			Position:        pos,
		}
		if err = w.tx.Create(&row).Error; err == nil {
			return menu.ItemNode(target, itemOf(&row)), nil
		}
	}
	if err != nil {
		return menu.Node{}, err
	}
	return menu.BranchNode(target, o.Spec.Name), nil
}

func (w writer) rename(o menu.Rename) (menu.Node, error) {
	if err := w.resolve(o.Path); err != nil {
		return menu.Node{}, err
	}
	taken, err := w.siblingNamed(o.Path.Parent(), o.Name, o.Path.ID())
	if err != nil {
		return menu.Node{}, err
	}
	if taken {
		return menu.Node{}, menu.ErrDuplicateName
	}
	l := levels[o.Path.Level()]
	if err := w.tx.Model(l.model).Where("id = ?", o.Path.ID()).Update("name", o.Name).Error; err != nil {
		return menu.Node{}, err
	}
	return menu.BranchNode(o.Path, o.Name), nil
}

func (w writer) editItem(o menu.EditItem) (menu.Node, error) {
	if err := w.resolve(o.Path); err != nil {
		return menu.Node{}, err
	}
	patch := map[string]interface{}{}
	if o.Description != nil {
		patch["description"] = *o.Description
	}
	if o.Rate != nil {
		patch["rate"] = *o.Rate
	}
	if o.IsItemAvailable != nil {
		patch["is_item_available"] = *o.IsItemAvailable
	}
	if len(patch) > 0 {
		if err := w.tx.Model(&models.ItemRow{}).Where("id = ?", o.Path.ID()).Updates(patch).Error; err != nil {
			return menu.Node{}, err
		}
	}
	var row models.ItemRow
	if err := w.tx.Take(&row, "id = ?", o.Path.ID()).Error; err != nil {
		return menu.Node{}, translate(err)
	}
	return menu.ItemNode(o.Path, itemOf(&row)), nil
}

func (w writer) remove(o menu.Remove) (menu.Node, error) {
	if err := w.resolve(o.Path); err != nil {
		return menu.Node{}, err
	}
	id := o.Path.ID()
	switch o.Path.Level() {
	case menu.LevelCategory:
		var row models.CategoryRow
		if err := w.tx.Take(&row, "id = ?", id).Error; err != nil {
			return menu.Node{}, translate(err)
		}
		subIDs := w.tx.Model(&models.SubCategoryRow{}).Select("id").Where("category_id = ?", id)
		if err := w.tx.Where("sub_category_id IN (?)", subIDs).Delete(&models.ItemRow{}).Error; err != nil {
			return menu.Node{}, err
		}
		if err := w.tx.Where("category_id = ?", id).Delete(&models.SubCategoryRow{}).Error; err != nil {
			return menu.Node{}, err
		}
		if err := w.tx.Delete(&models.CategoryRow{}, "id = ?", id).Error; err != nil {
			return menu.Node{}, err
		}
		return menu.BranchNode(o.Path, row.Name), nil
	case menu.LevelSubCategory:
		var row models.SubCategoryRow
		if err := w.tx.Take(&row, "id = ?", id).Error; err != nil {
			return menu.Node{}, translate(err)
		}
		if err := w.tx.Where("sub_category_id = ?", id).Delete(&models.ItemRow{}).Error; err != nil {
			return menu.Node{}, err
		}
		if err := w.tx.Delete(&models.SubCategoryRow{}, "id = ?", id).Error; err != nil {
			return menu.Node{}, err
		}
		return menu.BranchNode(o.Path, row.Name), nil
	default:
		var row models.ItemRow
		if err := w.tx.Take(&row, "id = ?", id).Error; err != nil {
			return menu.Node{}, translate(err)
		}
		if err := w.tx.Delete(&models.ItemRow{}, "id = ?", id).Error; err != nil {
			return menu.Node{}, err
		}
		return menu.ItemNode(o.Path, itemOf(&row)), nil
	}
}
