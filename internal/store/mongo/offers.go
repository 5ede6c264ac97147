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

func (s *Store) CreateOffer(ctx context.Context, offer *domain.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.NewString()
	}
	ts := now()
	offer.CreatedAt = ts
	offer.UpdatedAt = ts

	if _, err := s.offers.InsertOne(ctx, offer); err != nil {
		return fmt.Errorf("failed to insert offer: %w", err)
	}
	return nil
}

func (s *Store) GetOffer(ctx context.Context, id string) (*domain.Offer, error) {
	var offer domain.Offer
	err := s.offers.FindOne(ctx, bson.M{"_id": id}).Decode(&offer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrOfferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

func (s *Store) HasPendingOffer(ctx context.Context, productID, buyerID string) (bool, error) {
	filter := bson.M{
		"product_id": productID,
		"buyer_id":   buyerID,
		"status":     domain.OfferStatusPending,
	}
	n, err := s.offers.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count pending offers: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ListOffersForUser(ctx context.Context, userID string) ([]*domain.Offer, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"buyer_id": userID},
		bson.M{"seller_id": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := s.offers.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer cur.Close(ctx)

	var offers []*domain.Offer
	if err := cur.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("failed to decode offers: %w", err)
	}
	return offers, nil
}

// UpdateOfferStatus performs the terminal flip conditionally on the offer
// still being PENDING; a lost race surfaces as ErrOfferNotPending.
func (s *Store) UpdateOfferStatus(ctx context.Context, id string, to domain.OfferStatus) (*domain.Offer, error) {
	filter := bson.M{"_id": id, "status": domain.OfferStatusPending}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var offer domain.Offer
	err := s.offers.FindOneAndUpdate(ctx, filter, update, opts).Decode(&offer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := s.GetOffer(ctx, id); errors.Is(getErr, store.ErrOfferNotFound) {
			return nil, store.ErrOfferNotFound
		}
		return nil, store.ErrOfferNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update offer status: %w", err)
	}
	return &offer, nil
}

func (s *Store) DeclineSiblings(ctx context.Context, productID, exceptOfferID string) (int64, error) {
	filter := bson.M{
		"product_id": productID,
		"_id":        bson.M{"$ne": exceptOfferID},
		"status":     domain.OfferStatusPending,
	}
	update := bson.M{"$set": bson.M{"status": domain.OfferStatusDeclined, "updated_at": now()}}

	res, err := s.offers.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to decline sibling offers: %w", err)
	}
	return res.ModifiedCount, nil
}
