package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomato-api/config"
	"tomato-api/menu"
	"tomato-api/store"
	"tomato-api/store/storetest"
)

func newMenuStore(t *testing.T) (*store.MenuStore, string) {
	t.Helper()
	s := store.NewMenuStore(storetest.Open(t))
	require.NoError(t, s.Create(context.Background(), "rest-1"))
	return s, "rest-1"
}

func add(t *testing.T, s *store.MenuStore, rid string, parent menu.Path, id, name string) menu.Node {
	t.Helper()
	n, err := s.Apply(context.Background(), rid, menu.Add{Parent: parent, Spec: menu.Spec{ID: id, Name: name}})
	require.NoError(t, err)
	return n
}

func TestMenuStoreSnapshotOfEmptyMenu(t *testing.T) {
	s, rid := newMenuStore(t)

	doc, err := s.Snapshot(context.Background(), rid)
	require.NoError(t, err)
	assert.Equal(t, rid, doc.RestaurantID)
	assert.NotNil(t, doc.Categories)
	assert.Empty(t, doc.Categories)

	_, err = s.Snapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMenuStoreCreateTwice(t *testing.T) {
	s, rid := newMenuStore(t)
	assert.ErrorIs(t, s.Create(context.Background(), rid), store.ErrDuplicate)
}

func TestMenuStoreApply(t *testing.T) {
	ctx := context.Background()
	s, rid := newMenuStore(t)

	add(t, s, rid, nil, "c1", "drinks")
	add(t, s, rid, menu.CategoryPath("c1"), "s1", "hot")
	rate := 3.5
	item, err := s.Apply(ctx, rid, menu.Add{Parent: menu.SubCategoryPath("c1", "s1"), Spec: menu.Spec{
		ID: "i1", Name: "coffee", Description: "filter", Rate: &rate, IsVeg: true,
	}})
	require.NoError(t, err)
	assert.Equal(t, menu.ItemPath("c1", "s1", "i1"), item.Path)
	assert.Equal(t, 3.5, *item.Rate)
	assert.False(t, *item.IsItemAvailable)

	doc, err := s.Snapshot(ctx, rid)
	require.NoError(t, err)
	assert.Equal(t, int64(3), doc.Version)
	require.Len(t, doc.Categories, 1)
	require.Len(t, doc.Categories[0].SubCategories, 1)
	require.Len(t, doc.Categories[0].SubCategories[0].Items, 1)
	assert.Equal(t, "coffee", doc.Categories[0].SubCategories[0].Items[0].Name)

	t.Run("DuplicateSibling", func(t *testing.T) {
		_, err := s.Apply(ctx, rid, menu.Add{Spec: menu.Spec{ID: "c2", Name: "drinks"}})
		assert.ErrorIs(t, err, menu.ErrDuplicateName)
	})

	t.Run("WrongAncestor", func(t *testing.T) {
		add(t, s, rid, nil, "c3", "starters")
		_, err := s.Apply(ctx, rid, menu.Add{Parent: menu.SubCategoryPath("c3", "s1"), Spec: menu.Spec{ID: "i2", Name: "tea"}})
		assert.ErrorIs(t, err, menu.ErrNotFound)
	})

	t.Run("Rename", func(t *testing.T) {
		n, err := s.Apply(ctx, rid, menu.Rename{Path: menu.SubCategoryPath("c1", "s1"), Name: "warm"})
		require.NoError(t, err)
		assert.Equal(t, "warm", n.Name)

		_, err = s.Apply(ctx, rid, menu.Rename{Path: menu.CategoryPath("c3"), Name: "drinks"})
		assert.ErrorIs(t, err, menu.ErrDuplicateName)

		_, err = s.Apply(ctx, rid, menu.Rename{Path: menu.CategoryPath("c3"), Name: "starters"})
		assert.NoError(t, err)
	})

	t.Run("EditItem", func(t *testing.T) {
		avail := true
		four := 4.0
		n, err := s.Apply(ctx, rid, menu.EditItem{Path: menu.ItemPath("c1", "s1", "i1"), Rate: &four, IsItemAvailable: &avail})
		require.NoError(t, err)
		assert.Equal(t, 4.0, *n.Rate)
		assert.Equal(t, "filter", *n.Description)
		assert.True(t, *n.IsItemAvailable)
		assert.True(t, *n.IsVeg)
	})

	t.Run("RemoveCascades", func(t *testing.T) {
		n, err := s.Apply(ctx, rid, menu.Remove{Path: menu.CategoryPath("c1")})
		require.NoError(t, err)
		assert.Equal(t, "drinks", n.Name)

		_, err = s.Apply(ctx, rid, menu.EditItem{Path: menu.ItemPath("c1", "s1", "i1")})
		assert.ErrorIs(t, err, menu.ErrNotFound)

		doc, err := s.Snapshot(ctx, rid)
		require.NoError(t, err)
		require.Len(t, doc.Categories, 1)
		assert.Equal(t, "c3", doc.Categories[0].ID)

		tree, err := menu.NewTree(doc)
		require.NoError(t, err)
		assert.Equal(t, 0, tree.Len(menu.LevelItem))
		assert.Equal(t, 0, tree.Len(menu.LevelSubCategory))
	})
}

func TestMenuStoreFailedOpLeavesVersion(t *testing.T) {
	ctx := context.Background()
	s, rid := newMenuStore(t)
	add(t, s, rid, nil, "c1", "drinks")

	_, err := s.Apply(ctx, rid, menu.Remove{Path: menu.CategoryPath("nope")})
	require.ErrorIs(t, err, menu.ErrNotFound)

	doc, err := s.Snapshot(ctx, rid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
}

func TestMenuStoreUnknownMenu(t *testing.T) {
	s, _ := newMenuStore(t)
	_, err := s.Apply(context.Background(), "missing", menu.Add{Spec: menu.Spec{ID: "c1", Name: "drinks"}})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMenuStoreConcurrentAddsKeepNamesUnique(t *testing.T) {
	ctx := context.Background()
	s, rid := newMenuStore(t)

	const writers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok, dup int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Apply(ctx, rid, menu.Add{Spec: menu.Spec{ID: fmt.Sprintf("c%d", i), Name: "starters"}})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, menu.ErrDuplicateName):
				dup++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, writers-1, dup)

	doc, err := s.Snapshot(ctx, rid)
	require.NoError(t, err)
	assert.Len(t, doc.Categories, 1)
}

// Runs on a file database with a real connection pool, so the transactions overlap and
// only the version bump keeps them apart.
func TestMenuStoreParallelTransactionsOnFileDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := config.OpenDB(config.Config{DBPath: filepath.Join(t.TempDir(), "menu.db")})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	sqlDB.SetMaxOpenConns(8)

	s := store.NewMenuStore(db)
	require.NoError(t, s.Create(ctx, "rest-1"))

	const writers, names = 16, 4
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok, dup int
	)
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			op := menu.Add{Spec: menu.Spec{ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("name-%d", i%names)}}
			_, err := s.Apply(ctx, "rest-1", op)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, menu.ErrDuplicateName):
				dup++
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, names, ok)
	assert.Equal(t, writers-names, dup)

	doc, err := s.Snapshot(ctx, "rest-1")
	require.NoError(t, err)
	require.Len(t, doc.Categories, names)
	seen := map[string]bool{}
	for _, c := range doc.Categories {
		assert.False(t, seen[c.Name], "duplicate category %q", c.Name)
		seen[c.Name] = true
	}
	assert.Equal(t, int64(names), doc.Version, "rolled back attempts must not bump the version")
}

func TestMenuStoreAgreesWithTreeApply(t *testing.T) {
	ctx := context.Background()
	s, rid := newMenuStore(t)
	doc, err := s.Snapshot(ctx, rid)
	require.NoError(t, err)
	ref, err := menu.NewTree(doc)
	require.NoError(t, err)

	rate, cheaper, desc, avail := 4.0, 3.0, "strong", true
	ops := []menu.Op{
		menu.Add{Spec: menu.Spec{ID: "c1", Name: "drinks"}},
		menu.Add{Spec: menu.Spec{ID: "c2", Name: "mains"}},
		menu.Add{Parent: menu.CategoryPath("c1"), Spec: menu.Spec{ID: "s1", Name: "hot"}},
		menu.Add{Parent: menu.SubCategoryPath("c1", "s1"), Spec: menu.Spec{ID: "i1", Name: "coffee", Rate: &rate, IsVeg: true}},
		menu.Add{Parent: menu.SubCategoryPath("c1", "s1"), Spec: menu.Spec{ID: "i2", Name: "tea"}},
		menu.EditItem{Path: menu.ItemPath("c1", "s1", "i1"), Rate: &cheaper, Description: &desc, IsItemAvailable: &avail},
		menu.Rename{Path: menu.CategoryPath("c2"), Name: "curries"},
		menu.Remove{Path: menu.ItemPath("c1", "s1", "i2")},
		menu.Add{Parent: menu.CategoryPath("c2"), Spec: menu.Spec{ID: "s2", Name: "veg"}},
		menu.Remove{Path: menu.CategoryPath("c1")},
	}
	for _, op := range ops {
		want, err := ref.Apply(op)
		require.NoError(t, err, "%T at %s", op, op.Target())
		got, err := s.Apply(ctx, rid, op)
		require.NoError(t, err, "%T at %s", op, op.Target())
		assert.Equal(t, want, got, "%T at %s", op, op.Target())
	}

	stored, err := s.Snapshot(ctx, rid)
	require.NoError(t, err)
	normalized, err := menu.NewTree(stored)
	require.NoError(t, err)
	assert.Equal(t, ref.Document(), normalized.Document())
}
