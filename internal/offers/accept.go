package offers

import (
	"context"
	"errors"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/events"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store"
)

// accept runs the acceptance saga. The listing claim comes first: MarkSold's
// ACTIVE-only condition is what serializes competing accepts (and competing
// purchases) on the same product, so a product can never be open with an
// accepted offer attached. Only after the claim holds is the offer itself
// flipped; losing that flip relists the product.
func (s *Service) accept(ctx context.Context, offer *domain.Offer) (*domain.Offer, error) {
	prevStock, err := s.ledger.MarkSold(ctx, offer.ProductID)
	if err != nil {
		// Conflict here means another accept or a purchase already took
		// the listing.
		return nil, err
	}

	updated, err := s.offers.UpdateOfferStatus(ctx, offer.ID, domain.OfferStatusAccepted)
	if err != nil {
		if relistErr := s.ledger.Relist(ctx, offer.ProductID, prevStock); relistErr != nil {
			s.log.Error().Err(relistErr).Str("product_id", offer.ProductID).
				Msg("relist failed after losing offer flip")
		}
		if errors.Is(err, store.ErrOfferNotPending) {
			return nil, domain.Conflict("offer already processed")
		}
		if errors.Is(err, store.ErrOfferNotFound) {
			return nil, domain.NotFound("offer not found")
		}
		return nil, domain.Internal("failed to accept offer", err)
	}

	declined, err := s.declineSiblings(ctx, offer.ProductID, offer.ID)
	if err != nil {
		// The accept stands; the listing is already closed, so stale
		// PENDING siblings cannot be accepted, only displayed wrong.
		s.log.Error().Err(err).Str("offer_id", offer.ID).Str("product_id", offer.ProductID).
			Msg("declining sibling offers failed after retries")
	}

	s.events.Publish(ctx, events.TypeOfferAccepted, offer.ProductID, events.OfferAccepted{
		OfferID:   updated.ID,
		ProductID: updated.ProductID,
		BuyerID:   updated.BuyerID,
		SellerID:  updated.SellerID,
		Price:     updated.Price,
	})
	s.log.Info().Str("offer_id", updated.ID).Str("product_id", updated.ProductID).
		Int64("declined_siblings", declined).Msg("offer accepted, listing closed")
	return updated, nil
}

// declineSiblings retries the bulk decline a few times; the update is
// idempotent, so repeating it after a partial failure is harmless.
func (s *Service) declineSiblings(ctx context.Context, productID, exceptOfferID string) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < declineAttempts; attempt++ {
		n, err := s.offers.DeclineSiblings(ctx, productID, exceptOfferID)
		if err == nil {
			return n, nil
		}
		lastErr = err
		s.log.Warn().Err(err).Str("product_id", productID).Int("attempt", attempt+1).
			Msg("sibling decline attempt failed")
	}
	return 0, lastErr
}

const declineAttempts = 3
