package mongostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"tomato-api/menu"
)

func TestPositionalPaths(t *testing.T) {
	assert.Equal(t, "category", childArray(nil))
	assert.Equal(t, "category.$[c].subCategory", childArray(menu.CategoryPath("c1")))
	assert.Equal(t, "category.$[c].subCategory.$[s].item", childArray(menu.SubCategoryPath("c1", "s1")))
	assert.Equal(t, "category.$[c].subCategory.$[s].item.$[i]", fieldPath(menu.ItemPath("c1", "s1", "i1")))

	assert.Equal(t, []interface{}{
		bson.D{{Key: "c._id", Value: "c1"}},
		bson.D{{Key: "s._id", Value: "s1"}},
	}, arrayFilters(menu.SubCategoryPath("c1", "s1")))
}

func TestBuildAddItem(t *testing.T) {
	rate := 3.5
	m := build("r1", menu.Add{Parent: menu.SubCategoryPath("c1", "s1"), Spec: menu.Spec{
		ID: "i1", Name: "coffee", Rate: &rate, IsVeg: true,
	}})

	absent := bson.D{{Key: "item", Value: bson.D{{Key: "$not", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: "coffee"}},
			bson.D{{Key: "_id", Value: "i1"}},
		}},
	}}}}}}}
	want := bson.D{
		{Key: "restaurantId", Value: "r1"},
		{Key: "category", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "subCategory", Value: bson.D{{Key: "$elemMatch", Value: append(bson.D{
				{Key: "_id", Value: "s1"},
			}, absent...)}}},
		}}}},
	}
	assert.Equal(t, want, m.filter)

	push := m.update[0]
	assert.Equal(t, "$push", push.Key)
	el := push.Value.(bson.D)[0]
	assert.Equal(t, "category.$[c].subCategory.$[s].item", el.Key)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: "i1"},
		{Key: "name", Value: "coffee"},
		{Key: "description", Value: ""},
		{Key: "rate", Value: 3.5},
		{Key: "isVeg", Value: true},
		{Key: "isItemAvailable", Value: false},
	}, el.Value)
	assert.Equal(t, "$inc", m.update[1].Key)
	assert.Len(t, m.filters, 2)
}

func TestBuildAddCategoryStartsWithEmptyChildren(t *testing.T) {
	m := build("r1", menu.Add{Spec: menu.Spec{ID: "c1", Name: "drinks"}})

	assert.Equal(t, "restaurantId", m.filter[0].Key)
	assert.Equal(t, "category", m.filter[1].Key)
	assert.Empty(t, m.filters)

	el := m.update[0].Value.(bson.D)[0]
	assert.Equal(t, "category", el.Key)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: "c1"},
		{Key: "name", Value: "drinks"},
		{Key: "subCategory", Value: bson.A{}},
	}, el.Value)
}

func TestBuildRenameGuardsSiblings(t *testing.T) {
	m := build("r1", menu.Rename{Path: menu.SubCategoryPath("c1", "s1"), Name: "cold"})

	assert.Equal(t, bson.D{{Key: "category.$[c].subCategory.$[s].name", Value: "cold"}}, m.update[0].Value)
	assert.Len(t, m.filters, 2)

	cat := m.filter[1].Value.(bson.D)[0].Value.(bson.D)
	assert.Equal(t, bson.E{Key: "_id", Value: "c1"}, cat[0])
	assert.Equal(t, "$and", cat[1].Key)
}

func TestBuildEditWithoutFieldsOnlyBumpsVersion(t *testing.T) {
	m := build("r1", menu.EditItem{Path: menu.ItemPath("c1", "s1", "i1")})

	assert.Len(t, m.update, 1)
	assert.Equal(t, "$inc", m.update[0].Key)
	assert.Empty(t, m.filters)
}

func TestBuildRemoveSubCategory(t *testing.T) {
	m := build("r1", menu.Remove{Path: menu.SubCategoryPath("c1", "s1")})

	assert.Equal(t, bson.D{
		{Key: "category.$[c].subCategory", Value: bson.D{{Key: "_id", Value: "s1"}}},
	}, m.update[0].Value)
	assert.Equal(t, []interface{}{bson.D{{Key: "c._id", Value: "c1"}}}, m.filters)
}
