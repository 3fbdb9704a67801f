package menu

import "strings"

// Level is the depth of a node below the menu root.
type Level int

const (
	LevelMenu Level = iota
	LevelCategory
	LevelSubCategory
	LevelItem
)

func (l Level) String() string {
	switch l {
	case LevelMenu:
		return "menu"
	case LevelCategory:
		return "category"
	case LevelSubCategory:
		return "sub-category"
	case LevelItem:
		return "item"
	default:
		return "unknown"
	}
}

// Path is the ordered chain of ids from the menu root to a node. The empty path is the
// menu itself.
type Path []string

func CategoryPath(categoryID string) Path { return Path{categoryID} }

func SubCategoryPath(categoryID, subCategoryID string) Path {
	return Path{categoryID, subCategoryID}
}

func ItemPath(categoryID, subCategoryID, itemID string) Path {
	return Path{categoryID, subCategoryID, itemID}
}

func (p Path) Level() Level { return Level(len(p)) }

// ID is the id of the addressed node, empty for the root.
func (p Path) ID() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[: len(p)-1 : len(p)-1]
}

func (p Path) Child(id string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = id
	return out
}

func (p Path) Validate() error {
	if len(p) > int(LevelItem) {
		return ErrInvalidPath
	}
	for _, id := range p {
		if strings.TrimSpace(id) == "" {
			return ErrInvalidPath
		}
	}
	return nil
}

func (p Path) String() string { return "/" + strings.Join(p, "/") }
