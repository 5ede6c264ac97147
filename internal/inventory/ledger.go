// Package inventory holds the ledger: the only component allowed to write a
// product's stock, sold counter or listing status. Checkout reserves and
// releases through it; offer acceptance claims through it. Both paths meet at
// the same conditional store primitives, so they stay mutually consistent.
package inventory

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store"
)

type Ledger struct {
	products store.ProductStore
	log      zerolog.Logger
}

func NewLedger(products store.ProductStore, log zerolog.Logger) *Ledger {
	return &Ledger{products: products, log: log.With().Str("component", "inventory").Logger()}
}

// Reserve atomically decrements stock and increments sold for a validated
// quantity. Fails without mutation when the listing is gone, closed, or short.
func (l *Ledger) Reserve(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return domain.ValidationError("quantity must be positive")
	}

	err := l.products.ReserveStock(ctx, productID, qty)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrListingClosed),
		errors.Is(err, store.ErrInsufficientStock):
		return domain.OutOfStock(productID)
	default:
		return domain.Internal("stock reservation failed", err)
	}
}

// Release is the compensating increment for a reservation whose saga failed
// later on. It must not fail silently: a lost release leaks stock.
func (l *Ledger) Release(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return domain.ValidationError("quantity must be positive")
	}
	if err := l.products.ReleaseStock(ctx, productID, qty); err != nil {
		l.log.Error().Err(err).Str("product_id", productID).Int("qty", qty).
			Msg("stock release failed; stock leaked until reconciled")
		return domain.Internal("stock release failed", err)
	}
	return nil
}

// MarkSold claims the listing for an accepted offer: stock to zero, status to
// SOLD, unconditionally on values but conditionally on the listing still
// being ACTIVE. Returns the pre-claim stock for compensation.
func (l *Ledger) MarkSold(ctx context.Context, productID string) (int, error) {
	prev, err := l.products.MarkSold(ctx, productID)
	switch {
	case err == nil:
		return prev, nil
	case errors.Is(err, store.ErrProductNotFound):
		return 0, domain.NotFound("product not found")
	case errors.Is(err, store.ErrListingClosed):
		return 0, domain.Conflict("product is no longer available")
	default:
		return 0, domain.Internal("failed to mark product sold", err)
	}
}

// Relist undoes a MarkSold whose follow-up step lost a race.
func (l *Ledger) Relist(ctx context.Context, productID string, stock int) error {
	if err := l.products.Relist(ctx, productID, stock); err != nil {
		l.log.Error().Err(err).Str("product_id", productID).Int("stock", stock).
			Msg("relist compensation failed; listing stuck SOLD")
		return domain.Internal("failed to relist product", err)
	}
	return nil
}
