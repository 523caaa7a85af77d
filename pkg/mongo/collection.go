package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/craftdesk/servicekit/pkg/writequeue"
)

// CollectionStore adapts a MongoDB collection to the write queue's
// per-model datastore interface. One instance is registered per logical
// model name; the queue never assumes a particular schema.
type CollectionStore struct {
	coll *mongo.Collection
}

// NewCollectionStore wraps the given collection.
func NewCollectionStore(coll *mongo.Collection) *CollectionStore {
	return &CollectionStore{coll: coll}
}

// Create inserts the payload as a new document.
func (s *CollectionStore) Create(ctx context.Context, payload map[string]any) error {
	_, err := s.coll.InsertOne(ctx, bson.M(payload))
	return err
}

// Update applies the payload as a $set to the document matching the criteria.
func (s *CollectionStore) Update(ctx context.Context, criteria, payload map[string]any) error {
	_, err := s.coll.UpdateOne(ctx, bson.M(criteria), bson.M{"$set": bson.M(payload)})
	return err
}

// Delete removes the document matching the criteria.
func (s *CollectionStore) Delete(ctx context.Context, criteria map[string]any) error {
	_, err := s.coll.DeleteOne(ctx, bson.M(criteria))
	return err
}

// Upsert inserts the payload if no document matches the criteria, otherwise
// applies it as an update.
func (s *CollectionStore) Upsert(ctx context.Context, criteria, payload map[string]any) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M(criteria),
		bson.M{"$set": bson.M(payload)},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// RegisterModels binds each model name to its same-named collection in the
// database.
func RegisterModels(reg *writequeue.Registry, db *mongo.Database, models ...string) {
	for _, model := range models {
		reg.Register(model, NewCollectionStore(db.Collection(model)))
	}
}
