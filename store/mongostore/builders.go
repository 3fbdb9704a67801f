package mongostore

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"tomato-api/menu"
)

// Array field and array-filter identifier per depth below the menu root.
var (
	arrays = [...]string{"category", "subCategory", "item"}
	idents = [...]string{"c", "s", "i"}
)

// elemMatch asserts that every id of p exists, each inside the element matched for the
// previous one. extra is applied to the element p addresses, or to the document for the
// empty path.
func elemMatch(p menu.Path, depth int, extra bson.D) bson.D {
	if len(p) == 0 {
		return extra
	}
	cond := bson.D{{Key: "_id", Value: p[0]}}
	cond = append(cond, elemMatch(p[1:], depth+1, extra)...)
	return bson.D{{Key: arrays[depth], Value: bson.D{{Key: "$elemMatch", Value: cond}}}}
}

// noChild asserts that no child of the element at depth matches cond.
func noChild(depth int, cond bson.D) bson.D {
	return bson.D{{Key: arrays[depth], Value: bson.D{
		{Key: "$not", Value: bson.D{{Key: "$elemMatch", Value: cond}}},
	}}}
}

func hasChild(depth int, id string) bson.D {
	return bson.D{{Key: arrays[depth], Value: bson.D{
		{Key: "$elemMatch", Value: bson.D{{Key: "_id", Value: id}}},
	}}}
}

// fieldPath is the positional path of the element p addresses, e.g.
// category.$[c].subCategory.$[s].
func fieldPath(p menu.Path) string {
	parts := make([]string, 0, len(p))
	for i := range p {
		parts = append(parts, arrays[i]+".$["+idents[i]+"]")
	}
	return strings.Join(parts, ".")
}

// childArray is the positional path of the array holding the children of p.
func childArray(p menu.Path) string {
	if len(p) == 0 {
		return arrays[0]
	}
	return fieldPath(p) + "." + arrays[len(p)]
}

func arrayFilters(p menu.Path) []interface{} {
	out := make([]interface{}, 0, len(p))
	for i, id := range p {
		out = append(out, bson.D{{Key: idents[i] + "._id", Value: id}})
	}
	return out
}

// mutation is the single conditional update that performs one op.
type mutation struct {
	filter  bson.D
	update  bson.D
	filters []interface{}
}

func build(restaurantID string, op menu.Op) mutation {
	root := bson.D{{Key: "restaurantId", Value: restaurantID}}
	bump := bson.E{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}}

	switch o := op.(type) {
	case menu.Add:
		depth := len(o.Parent)
		absent := noChild(depth, bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: o.Spec.Name}},
			bson.D{{Key: "_id", Value: o.Spec.ID}},
		}}})
		return mutation{
			filter: append(root, elemMatch(o.Parent, 0, absent)...),
			update: bson.D{
				{Key: "$push", Value: bson.D{{Key: childArray(o.Parent), Value: newElement(depth, o.Spec)}}},
				bump,
			},
			filters: arrayFilters(o.Parent),
		}
	case menu.Rename:
		parent := o.Path.Parent()
		depth := len(parent)
		guard := bson.D{{Key: "$and", Value: bson.A{
			hasChild(depth, o.Path.ID()),
			noChild(depth, bson.D{
				{Key: "name", Value: o.Name},
				{Key: "_id", Value: bson.D{{Key: "$ne", Value: o.Path.ID()}}},
			}),
		}}}
		return mutation{
			filter: append(root, elemMatch(parent, 0, guard)...),
			update: bson.D{
				{Key: "$set", Value: bson.D{{Key: fieldPath(o.Path) + ".name", Value: o.Name}}},
				bump,
			},
			filters: arrayFilters(o.Path),
		}
	case menu.EditItem:
		base := fieldPath(o.Path)
		set := bson.D{}
		if o.Description != nil {
			set = append(set, bson.E{Key: base + ".description", Value: *o.Description})
		}
		if o.Rate != nil {
			set = append(set, bson.E{Key: base + ".rate", Value: *o.Rate})
		}
		if o.IsItemAvailable != nil {
			set = append(set, bson.E{Key: base + ".isItemAvailable", Value: *o.IsItemAvailable})
		}
		m := mutation{filter: append(root, elemMatch(o.Path, 0, nil)...), update: bson.D{bump}}
		if len(set) > 0 {
			m.update = bson.D{{Key: "$set", Value: set}, bump}
			m.filters = arrayFilters(o.Path)
		}
		return m
	case menu.Remove:
		parent := o.Path.Parent()
		return mutation{
			filter: append(root, elemMatch(o.Path, 0, nil)...),
			update: bson.D{
				{Key: "$pull", Value: bson.D{{Key: childArray(parent), Value: bson.D{{Key: "_id", Value: o.Path.ID()}}}}},
				bump,
			},
			filters: arrayFilters(parent),
		}
	}
	return mutation{}
}

// newElement builds the array element for a node created at depth. Child arrays are
// written as empty arrays so later pushes into them never hit a null field.
func newElement(depth int, spec menu.Spec) bson.D {
	el := bson.D{{Key: "_id", Value: spec.ID}, {Key: "name", Value: spec.Name}}
	if depth < len(arrays)-1 {
		return append(el, bson.E{Key: arrays[depth+1], Value: bson.A{}})
	}
	el = append(el, bson.E{Key: "description", Value: spec.Description})
	if spec.Rate != nil {
		el = append(el, bson.E{Key: "rate", Value: *spec.Rate})
	}
	return append(el,
		bson.E{Key: "isVeg", Value: spec.IsVeg},
		bson.E{Key: "isItemAvailable", Value: spec.IsItemAvailable},
	)
}
