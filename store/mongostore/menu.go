// Package mongostore keeps each menu as one MongoDB document in the nested-array form and
// performs every catalog op as a single conditional update addressed by array filters.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tomato-api/menu"
	"tomato-api/store"
)

const collection = "menus"

// Connect dials uri and checks the server answers.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

type MenuStore struct {
	coll *mongo.Collection
}

func NewMenuStore(db *mongo.Database) *MenuStore {
	return &MenuStore{coll: db.Collection(collection)}
}

// EnsureIndexes makes restaurantId unique so a restaurant never gets two menus.
func (s *MenuStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "restaurantId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MenuStore) Create(ctx context.Context, restaurantID string) error {
	_, err := s.coll.InsertOne(ctx, bson.D{
		{Key: "restaurantId", Value: restaurantID},
		{Key: "version", Value: int64(0)},
		{Key: arrays[0], Value: bson.A{}},
	})
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *MenuStore) Snapshot(ctx context.Context, restaurantID string) (*menu.Document, error) {
	var doc menu.Document
	err := s.coll.FindOne(ctx, bson.D{{Key: "restaurantId", Value: restaurantID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tree, err := menu.NewTree(&doc)
	if err != nil {
		return nil, err
	}
	return tree.Document(), nil
}

// Apply performs op with one FindOneAndUpdate. When the filter matches nothing the
// committed document is re-read to tell a failed precondition from a lost race.
func (s *MenuStore) Apply(ctx context.Context, restaurantID string, op menu.Op) (menu.Node, error) {
	if err := menu.Validate(op); err != nil {
		return menu.Node{}, err
	}
	m := build(restaurantID, op)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if _, ok := op.(menu.Remove); ok {
		opts.SetReturnDocument(options.Before)
	}
	if len(m.filters) > 0 {
		opts.SetArrayFilters(options.ArrayFilters{Filters: m.filters})
	}

	var doc menu.Document
	err := s.coll.FindOneAndUpdate(ctx, m.filter, m.update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return menu.Node{}, s.classify(ctx, restaurantID, op)
	}
	if err != nil {
		return menu.Node{}, err
	}

	tree, err := menu.NewTree(&doc)
	if err != nil {
		return menu.Node{}, err
	}
	return tree.Resolve(op.Target())
}

func (s *MenuStore) classify(ctx context.Context, restaurantID string, op menu.Op) error {
	doc, err := s.Snapshot(ctx, restaurantID)
	if err != nil {
		return err
	}
	tree, err := menu.NewTree(doc)
	if err != nil {
		return err
	}
	if err := tree.Check(op); err != nil {
		return err
	}
	return menu.ErrConcurrentUpdate
}
