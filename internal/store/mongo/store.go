// Package mongo implements the store contracts on MongoDB. All concurrency
// guarantees come from single-document conditional updates: the filter
// expresses the precondition and the server serializes writers per document,
// so a lost race surfaces as a zero-match update rather than a partial write.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	products *mongo.Collection
	carts    *mongo.Collection
	orders   *mongo.Collection
	offers   *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		products: db.Collection("products"),
		carts:    db.Collection("carts"),
		orders:   db.Collection("orders"),
		offers:   db.Collection("offers"),
	}
}

// CreateIndexes sets up the indexes the conditional operations rely on. The
// unique order idempotency key is what makes checkout retries safe.
func (s *Store) CreateIndexes(ctx context.Context) error {
	_, err := s.carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create cart index: %w", err)
	}

	_, err = s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}

	_, err = s.offers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "buyer_id", Value: 1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create offer indexes: %w", err)
	}

	return nil
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// isDuplicateKey reports whether err is a unique-index violation.
func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
