// Package offers runs price negotiation on a listing. Acceptance is the
// sensitive path: it must close the listing, flip exactly one offer to
// ACCEPTED and decline the rest, without ever leaving an accepted offer on
// an open listing.
package offers

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/events"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/inventory"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store"
)

type Service struct {
	offers   store.OfferStore
	products store.ProductStore
	ledger   *inventory.Ledger
	events   events.Publisher
	log      zerolog.Logger
}

func NewService(offers store.OfferStore, products store.ProductStore, ledger *inventory.Ledger, pub events.Publisher, log zerolog.Logger) *Service {
	return &Service{
		offers:   offers,
		products: products,
		ledger:   ledger,
		events:   pub,
		log:      log.With().Str("component", "offers").Logger(),
	}
}

// Create opens a PENDING offer from buyer to the product's seller. A buyer
// holds at most one pending offer per product.
func (s *Service) Create(ctx context.Context, buyerID, productID string, price int64) (*domain.Offer, error) {
	if buyerID == "" {
		return nil, domain.Unauthorized("missing user identity")
	}
	if productID == "" {
		return nil, domain.ValidationError("missing product id")
	}
	if price <= 0 {
		return nil, domain.ValidationError("offer price must be positive")
	}

	p, err := s.products.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrProductNotFound) {
		return nil, domain.NotFound("product not found")
	}
	if err != nil {
		return nil, domain.Internal("failed to load product", err)
	}
	if p.ListingStatus != domain.ListingActive {
		return nil, domain.Conflict("product is no longer available")
	}
	if p.SellerID == buyerID {
		return nil, domain.ValidationError("cannot make an offer on your own product")
	}

	pending, err := s.offers.HasPendingOffer(ctx, productID, buyerID)
	if err != nil {
		return nil, domain.Internal("failed to check pending offers", err)
	}
	if pending {
		return nil, domain.Conflict("you already have a pending offer on this product")
	}

	offer := &domain.Offer{
		ProductID: productID,
		BuyerID:   buyerID,
		SellerID:  p.SellerID,
		Price:     price,
		Status:    domain.OfferStatusPending,
	}
	if err := s.offers.CreateOffer(ctx, offer); err != nil {
		return nil, domain.Internal("failed to create offer", err)
	}
	s.log.Info().Str("offer_id", offer.ID).Str("product_id", productID).
		Int64("price", price).Msg("offer created")
	return offer, nil
}

// Get returns the offer if the caller is its buyer or seller.
func (s *Service) Get(ctx context.Context, callerID, offerID string) (*domain.Offer, error) {
	offer, err := s.offers.GetOffer(ctx, offerID)
	if errors.Is(err, store.ErrOfferNotFound) {
		return nil, domain.NotFound("offer not found")
	}
	if err != nil {
		return nil, domain.Internal("failed to load offer", err)
	}
	if offer.BuyerID != callerID && offer.SellerID != callerID {
		return nil, domain.Forbidden("offer belongs to another negotiation")
	}
	return offer, nil
}

// ListForUser returns every offer the user takes part in, on either side.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*domain.Offer, error) {
	if userID == "" {
		return nil, domain.Unauthorized("missing user identity")
	}
	offers, err := s.offers.ListOffersForUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal("failed to list offers", err)
	}
	return offers, nil
}

// UpdateStatus is the seller's decision. DECLINED is a plain conditional
// flip; ACCEPTED runs the acceptance saga in accept.go.
func (s *Service) UpdateStatus(ctx context.Context, sellerID, offerID string, to domain.OfferStatus) (*domain.Offer, error) {
	if to != domain.OfferStatusAccepted && to != domain.OfferStatusDeclined {
		return nil, domain.ValidationError("status must be ACCEPTED or DECLINED")
	}

	offer, err := s.offers.GetOffer(ctx, offerID)
	if errors.Is(err, store.ErrOfferNotFound) {
		return nil, domain.NotFound("offer not found")
	}
	if err != nil {
		return nil, domain.Internal("failed to load offer", err)
	}
	if offer.SellerID != sellerID {
		return nil, domain.Forbidden("only the seller can decide an offer")
	}
	if offer.Status.IsTerminal() {
		return nil, domain.Conflict("offer already processed")
	}

	if to == domain.OfferStatusDeclined {
		updated, err := s.offers.UpdateOfferStatus(ctx, offerID, domain.OfferStatusDeclined)
		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, store.ErrOfferNotPending):
			return nil, domain.Conflict("offer already processed")
		case errors.Is(err, store.ErrOfferNotFound):
			return nil, domain.NotFound("offer not found")
		default:
			return nil, domain.Internal("failed to decline offer", err)
		}
	}

	return s.accept(ctx, offer)
}
