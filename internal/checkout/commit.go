package checkout

import (
	"context"
	"errors"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store"
)

// commit runs the write side of the saga: reserve stock per line, create the
// order under the idempotency key, then drop the cart. Each step's failure
// compensates everything before it.
func (o *Orchestrator) commit(ctx context.Context, req Request, snap *snapshot, key string) (*domain.Order, error) {
	reserved, err := o.reserveLines(ctx, snap)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:          req.BuyerID,
		Items:           snap.orderItems(),
		Total:           snap.total,
		Status:          domain.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		IdempotencyKey:  key,
	}
	if err := o.orders.CreateOrder(ctx, order); err != nil {
		o.releaseLines(ctx, reserved)
		if errors.Is(err, store.ErrDuplicateOrder) {
			// Lost the race against a concurrent retry; its order wins.
			existing, lookupErr := o.orders.GetOrderByIdempotencyKey(ctx, key)
			if lookupErr != nil {
				return nil, domain.Internal("duplicate checkout lookup failed", lookupErr)
			}
			return existing, nil
		}
		return nil, domain.Internal("failed to create order", err)
	}

	if err := o.carts.Clear(ctx, req.BuyerID); err != nil {
		// The order must not survive with the cart intact, or a retry
		// against the bumped-version key would double-purchase.
		if delErr := o.orders.DeleteOrder(ctx, order.ID); delErr != nil {
			o.log.Error().Err(delErr).Str("order_id", order.ID).
				Msg("order rollback failed after cart clear failure")
		}
		o.releaseLines(ctx, reserved)
		return nil, domain.Internal("failed to clear cart", err)
	}

	if o.idem != nil {
		o.idem.Remember(ctx, key, order.ID)
	}
	return order, nil
}

type reservedLine struct {
	productID string
	quantity  int
}

// reserveLines decrements stock line by line. The first failure releases
// every earlier reservation and surfaces which product fell short.
func (o *Orchestrator) reserveLines(ctx context.Context, snap *snapshot) ([]reservedLine, error) {
	reserved := make([]reservedLine, 0, len(snap.lines))
	for _, l := range snap.lines {
		if err := o.ledger.Reserve(ctx, l.product.ID, l.quantity); err != nil {
			o.releaseLines(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, reservedLine{productID: l.product.ID, quantity: l.quantity})
	}
	return reserved, nil
}

func (o *Orchestrator) releaseLines(ctx context.Context, reserved []reservedLine) {
	for _, r := range reserved {
		if err := o.ledger.Release(ctx, r.productID, r.quantity); err != nil {
			o.log.Error().Err(err).Str("product_id", r.productID).Int("qty", r.quantity).
				Msg("reservation release failed during compensation")
		}
	}
}
