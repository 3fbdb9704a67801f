package menu

import "fmt"

// Op is one targeted catalog mutation addressed by id-path. Stores translate ops into
// their own atomic update primitive; Tree gives the reference semantics.
type Op interface {
	// Target is the path of the node the op creates, changes or removes.
	Target() Path
	isOp()
}

// Spec describes a node to create. Item fields are ignored above the item level.
type Spec struct {
	ID              string
	Name            string
	Description     string
	Rate            *float64
	IsVeg           bool
	IsItemAvailable bool
}

type Add struct {
	Parent Path
	Spec   Spec
}

type Rename struct {
	Path Path
	Name string
}

// EditItem patches the mutable item fields; nil fields are left unchanged.
type EditItem struct {
	Path            Path
	Description     *string
	Rate            *float64
	IsItemAvailable *bool
}

type Remove struct {
	Path Path
}

func (o Add) Target() Path      { return o.Parent.Child(o.Spec.ID) }
func (o Rename) Target() Path   { return o.Path }
func (o EditItem) Target() Path { return o.Path }
func (o Remove) Target() Path   { return o.Path }

func (Add) isOp()      {}
func (Rename) isOp()   {}
func (EditItem) isOp() {}
func (Remove) isOp()   {}

// Validate checks the shape of op on its own: path depth, names in normalized form and
// immutable fields. Stores run it before touching persisted state.
func Validate(op Op) error {
	switch o := op.(type) {
	case Add:
		if err := o.Parent.Validate(); err != nil {
			return err
		}
		if o.Parent.Level() >= LevelItem || o.Spec.ID == "" {
			return ErrInvalidPath
		}
		return checkNormalized(o.Spec.Name)
	case Rename:
		if err := o.Path.Validate(); err != nil {
			return err
		}
		switch o.Path.Level() {
		case LevelMenu:
			return ErrInvalidPath
		case LevelItem:
			return ErrImmutable
		}
		return checkNormalized(o.Name)
	case EditItem:
		if err := o.Path.Validate(); err != nil {
			return err
		}
		if o.Path.Level() != LevelItem {
			return ErrInvalidPath
		}
		return nil
	case Remove:
		if err := o.Path.Validate(); err != nil {
			return err
		}
		if len(o.Path) == 0 {
			return ErrInvalidPath
		}
		return nil
	default:
		return fmt.Errorf("menu: unsupported op %T", op)
	}
}

// Check validates op against the current tree without changing it.
func (t *Tree) Check(op Op) error {
	if err := Validate(op); err != nil {
		return err
	}
	switch o := op.(type) {
	case Add:
		if len(o.Parent) > 0 {
			if _, err := t.lookup(o.Parent); err != nil {
				return err
			}
		}
		if _, ok := t.levels[o.Parent.Level()+1][o.Spec.ID]; ok {
			return ErrDuplicateID
		}
		if t.siblingNamed(o.Parent, o.Spec.Name, "") {
			return ErrDuplicateName
		}
	case Rename:
		n, err := t.lookup(o.Path)
		if err != nil {
			return err
		}
		if t.siblingNamed(o.Path.Parent(), o.Name, n.id) {
			return ErrDuplicateName
		}
	case EditItem:
		_, err := t.lookup(o.Path)
		return err
	case Remove:
		_, err := t.lookup(o.Path)
		return err
	}
	return nil
}

// Apply validates and performs op on the in-memory tree, returning the affected node. For
// Remove the node is returned as it was before removal.
//
// Stores never call Apply; they persist ops with their own targeted writes. Apply is the
// reference those writes must agree with, node for node and document for document, and
// the store tests hold them to it.
func (t *Tree) Apply(op Op) (Node, error) {
	if err := t.Check(op); err != nil {
		return Node{}, err
	}
	switch o := op.(type) {
	case Add:
		level := o.Parent.Level() + 1
		n := &node{id: o.Spec.ID, name: o.Spec.Name, parent: o.Parent.ID()}
		if level == LevelItem {
			n.description = o.Spec.Description
			n.rate = cloneRate(o.Spec.Rate)
			n.isVeg = o.Spec.IsVeg
			n.available = o.Spec.IsItemAvailable
		}
		if err := t.insert(level, n); err != nil {
			return Node{}, err
		}
		t.version++
		return view(o.Target(), n), nil
	case Rename:
		n, _ := t.lookup(o.Path)
		n.name = o.Name
		t.version++
		return view(o.Path, n), nil
	case EditItem:
		n, _ := t.lookup(o.Path)
		if o.Description != nil {
			n.description = *o.Description
		}
		if o.Rate != nil {
			n.rate = cloneRate(o.Rate)
		}
		if o.IsItemAvailable != nil {
			n.available = *o.IsItemAvailable
		}
		t.version++
		return view(o.Path, n), nil
	case Remove:
		n, _ := t.lookup(o.Path)
		out := view(o.Path, n)
		t.detach(o.Path, n)
		t.version++
		return out, nil
	}
	return Node{}, fmt.Errorf("menu: unsupported op %T", op)
}

func (t *Tree) detach(p Path, n *node) {
	level := p.Level()
	if level == LevelCategory {
		t.roots = without(t.roots, n.id)
	} else {
		parent := t.levels[level-1][n.parent]
		parent.children = without(parent.children, n.id)
	}
	t.drop(level, n)
}

// drop removes n and its whole subtree from the arena.
func (t *Tree) drop(level Level, n *node) {
	if level < LevelItem {
		for _, cid := range n.children {
			t.drop(level+1, t.levels[level+1][cid])
		}
	}
	delete(t.levels[level], n.id)
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
