package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store"
)

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (s *Store) InsertProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	ts := now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = ts
	}
	p.UpdatedAt = ts
	if _, err := s.products.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// ReserveStock is the conditional decrement behind a checkout reservation:
// it matches only an ACTIVE listing with enough stock, so stock can never go
// negative and a SOLD listing can never be reserved.
func (s *Store) ReserveStock(ctx context.Context, productID string, qty int) error {
	filter := bson.M{
		"_id":            productID,
		"listing_status": domain.ListingActive,
		"stock":          bson.M{"$gte": qty},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -qty, "sold": qty},
		"$set": bson.M{"updated_at": now()},
	}

	res, err := s.products.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Zero matches: disambiguate for the caller.
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.ListingStatus != domain.ListingActive {
		return store.ErrListingClosed
	}
	return store.ErrInsufficientStock
}

func (s *Store) ReleaseStock(ctx context.Context, productID string, qty int) error {
	update := bson.M{
		"$inc": bson.M{"stock": qty, "sold": -qty},
		"$set": bson.M{"updated_at": now()},
	}
	res, err := s.products.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrProductNotFound
	}
	return nil
}

// MarkSold claims a listing for an accepted offer. The ACTIVE filter is the
// per-product linearization point: of N racing claims exactly one matches.
func (s *Store) MarkSold(ctx context.Context, productID string) (int, error) {
	filter := bson.M{"_id": productID, "listing_status": domain.ListingActive}
	update := bson.M{"$set": bson.M{
		"listing_status": domain.ListingSold,
		"stock":          0,
		"updated_at":     now(),
	}}

	// Return the pre-image so a failed follow-up step can Relist.
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var before domain.Product
	err := s.products.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := s.GetProduct(ctx, productID); errors.Is(getErr, store.ErrProductNotFound) {
			return 0, store.ErrProductNotFound
		}
		return 0, store.ErrListingClosed
	}
	if err != nil {
		return 0, fmt.Errorf("failed to mark product sold: %w", err)
	}
	return before.Stock, nil
}

func (s *Store) Relist(ctx context.Context, productID string, stock int) error {
	update := bson.M{"$set": bson.M{
		"listing_status": domain.ListingActive,
		"stock":          stock,
		"updated_at":     now(),
	}}
	res, err := s.products.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return fmt.Errorf("failed to relist product: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrProductNotFound
	}
	return nil
}
