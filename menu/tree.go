package menu

import "fmt"

// Node is the normalized view of one catalog node returned to callers instead of the
// whole menu. Item-only fields are nil for categories and sub-categories.
type Node struct {
	Path            Path     `json:"path"`
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     *string  `json:"description,omitempty"`
	Rate            *float64 `json:"rate,omitempty"`
	IsVeg           *bool    `json:"isVeg,omitempty"`
	IsItemAvailable *bool    `json:"isItemAvailable,omitempty"`
}

func (n Node) Level() Level { return n.Path.Level() }

type node struct {
	id       string
	name     string
	parent   string
	children []string

	// item fields
	description string
	rate        *float64
	isVeg       bool
	available   bool
}

// Tree is an arena over one menu document: a flat id-keyed map per level with parent
// pointers, so resolving a path costs O(depth).
type Tree struct {
	restaurantID string
	version      int64
	roots        []string
	levels       [LevelItem + 1]map[string]*node
}

func newTree(restaurantID string, version int64) *Tree {
	t := &Tree{restaurantID: restaurantID, version: version}
	for l := LevelCategory; l <= LevelItem; l++ {
		t.levels[l] = make(map[string]*node)
	}
	return t
}

// NewTree indexes a document. It fails on duplicate ids within a level.
func NewTree(doc *Document) (*Tree, error) {
	if doc == nil {
		return newTree("", 0), nil
	}
	t := newTree(doc.RestaurantID, doc.Version)
	for _, c := range doc.Categories {
		if err := t.insert(LevelCategory, &node{id: c.ID, name: c.Name}); err != nil {
			return nil, err
		}
		for _, s := range c.SubCategories {
			if err := t.insert(LevelSubCategory, &node{id: s.ID, name: s.Name, parent: c.ID}); err != nil {
				return nil, err
			}
			for _, it := range s.Items {
				n := &node{
					id:          it.ID,
					name:        it.Name,
					parent:      s.ID,
					description: it.Description,
					rate:        cloneRate(it.Rate),
					isVeg:       it.IsVeg,
					available:   it.IsItemAvailable,
				}
				if err := t.insert(LevelItem, n); err != nil {
					return nil, err
				}
			}
		}
	}
	return t, nil
}

func (t *Tree) insert(level Level, n *node) error {
	if n.id == "" {
		return fmt.Errorf("%s without id: %w", level, ErrInvalidPath)
	}
	if _, ok := t.levels[level][n.id]; ok {
		return fmt.Errorf("%s %s: %w", level, n.id, ErrDuplicateID)
	}
	t.levels[level][n.id] = n
	if level == LevelCategory {
		t.roots = append(t.roots, n.id)
		return nil
	}
	parent := t.levels[level-1][n.parent]
	parent.children = append(parent.children, n.id)
	return nil
}

func (t *Tree) RestaurantID() string { return t.restaurantID }

func (t *Tree) Version() int64 { return t.version }

// Len counts the live nodes at a level.
func (t *Tree) Len(level Level) int {
	if level < LevelCategory || level > LevelItem {
		return 0
	}
	return len(t.levels[level])
}

func (t *Tree) lookup(p Path) (*node, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, ErrInvalidPath
	}
	var (
		n      *node
		parent string
	)
	for i, id := range p {
		var ok bool
		n, ok = t.levels[Level(i+1)][id]
		if !ok || n.parent != parent {
			return nil, ErrNotFound
		}
		parent = id
	}
	return n, nil
}

// Resolve returns the node at p. Every ancestor on the path must be live and must be
// the actual parent of the next id.
func (t *Tree) Resolve(p Path) (Node, error) {
	n, err := t.lookup(p)
	if err != nil {
		return Node{}, err
	}
	return view(p, n), nil
}

func (t *Tree) Category(categoryID string) (Node, error) {
	return t.Resolve(CategoryPath(categoryID))
}

func (t *Tree) SubCategory(categoryID, subCategoryID string) (Node, error) {
	return t.Resolve(SubCategoryPath(categoryID, subCategoryID))
}

func (t *Tree) Item(categoryID, subCategoryID, itemID string) (Node, error) {
	return t.Resolve(ItemPath(categoryID, subCategoryID, itemID))
}

func (t *Tree) children(parent Path) ([]string, error) {
	if len(parent) == 0 {
		return t.roots, nil
	}
	n, err := t.lookup(parent)
	if err != nil {
		return nil, err
	}
	return n.children, nil
}

// siblingNamed reports whether a child of parent other than exceptID carries name.
func (t *Tree) siblingNamed(parent Path, name, exceptID string) bool {
	ids, err := t.children(parent)
	if err != nil {
		return false
	}
	level := parent.Level() + 1
	for _, id := range ids {
		if id != exceptID && t.levels[level][id].name == name {
			return true
		}
	}
	return false
}

// Document serializes the arena back into the nested-array form.
func (t *Tree) Document() *Document {
	doc := &Document{
		RestaurantID: t.restaurantID,
		Version:      t.version,
		Categories:   make([]Category, 0, len(t.roots)),
	}
	for _, cid := range t.roots {
		c := t.levels[LevelCategory][cid]
		cat := Category{ID: c.id, Name: c.name, SubCategories: make([]SubCategory, 0, len(c.children))}
		for _, sid := range c.children {
			s := t.levels[LevelSubCategory][sid]
			sub := SubCategory{ID: s.id, Name: s.name, Items: make([]Item, 0, len(s.children))}
			for _, iid := range s.children {
				it := t.levels[LevelItem][iid]
				sub.Items = append(sub.Items, Item{
					ID:              it.id,
					Name:            it.name,
					Description:     it.description,
					Rate:            cloneRate(it.rate),
					IsVeg:           it.isVeg,
					IsItemAvailable: it.available,
				})
			}
			cat.SubCategories = append(cat.SubCategories, sub)
		}
		doc.Categories = append(doc.Categories, cat)
	}
	return doc
}

func view(p Path, n *node) Node {
	out := Node{Path: append(Path(nil), p...), ID: n.id, Name: n.name}
	if p.Level() == LevelItem {
		desc, veg, avail := n.description, n.isVeg, n.available
		out.Description = &desc
		out.Rate = cloneRate(n.rate)
		out.IsVeg = &veg
		out.IsItemAvailable = &avail
	}
	return out
}

func cloneRate(r *float64) *float64 {
	if r == nil {
		return nil
	}
	v := *r
	return &v
}

// BranchNode is the view of the category or sub-category at p.
func BranchNode(p Path, name string) Node {
	return view(p, &node{id: p.ID(), name: name})
}

// ItemNode is the view of the item at p.
func ItemNode(p Path, it Item) Node {
	return view(p, &node{
		id:          p.ID(),
		name:        it.Name,
		description: it.Description,
		rate:        it.Rate,
		isVeg:       it.IsVeg,
		available:   it.IsItemAvailable,
	})
}
