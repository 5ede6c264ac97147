// Package checkout converts a cart into an order. The flow is a two-phase
// saga: a read-only validation pass over live catalog state, then a commit
// whose steps either all land or are compensated in reverse.
package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/cache"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/cart"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/events"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/inventory"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store"
)

// ItemInput is one requested purchase line. Quantity and size come from the
// client; price never does.
type ItemInput struct {
	ProductID string      `json:"product_id"`
	Size      domain.Size `json:"size"`
	Quantity  int         `json:"quantity"`
}

type Request struct {
	BuyerID         string
	Items           []ItemInput
	ShippingAddress domain.ShippingAddress
	// IdempotencyKey is optional; when absent one is derived from the
	// buyer's cart version so a blind retry still collapses.
	IdempotencyKey string
}

type Orchestrator struct {
	products store.ProductStore
	ledger   *inventory.Ledger
	carts    *cart.Service
	orders   store.OrderStore
	idem     *cache.IdempotencyIndex // optional fast path, may be nil
	events   events.Publisher
	log      zerolog.Logger
}

func NewOrchestrator(
	products store.ProductStore,
	ledger *inventory.Ledger,
	carts *cart.Service,
	orders store.OrderStore,
	idem *cache.IdempotencyIndex,
	pub events.Publisher,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		products: products,
		ledger:   ledger,
		carts:    carts,
		orders:   orders,
		idem:     idem,
		events:   pub,
		log:      log.With().Str("component", "checkout").Logger(),
	}
}

// Checkout validates the purchase against live catalog state, commits it,
// and returns the created order. A retry carrying a key already bound to an
// order returns that order unchanged.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (*domain.Order, error) {
	if req.BuyerID == "" {
		return nil, domain.Unauthorized("missing user identity")
	}
	if err := validateAddress(req.ShippingAddress); err != nil {
		return nil, err
	}

	buyerCart, err := o.carts.Get(ctx, req.BuyerID)
	if err != nil {
		return nil, err
	}

	items := req.Items
	if len(items) == 0 {
		items = itemsFromCart(buyerCart)
	}
	if len(items) == 0 {
		return nil, domain.ValidationError("cart is empty")
	}
	for _, it := range items {
		if it.ProductID == "" {
			return nil, domain.ValidationError("item missing product id")
		}
		if !it.Size.Valid() {
			return nil, domain.ValidationError("invalid size: must be S, M, L or XL")
		}
		if it.Quantity < 1 {
			return nil, domain.ValidationError("quantity must be positive")
		}
	}

	key := req.IdempotencyKey
	if key == "" {
		key = deriveKey(req.BuyerID, buyerCart)
	}

	if existing, ok := o.replay(ctx, key); ok {
		o.log.Info().Str("order_id", existing.ID).Str("user_id", req.BuyerID).
			Msg("checkout replayed from idempotency key")
		return existing, nil
	}

	snapshot, err := o.buildSnapshot(ctx, items)
	if err != nil {
		return nil, err
	}

	order, err := o.commit(ctx, req, snapshot, key)
	if err != nil {
		return nil, err
	}

	o.events.Publish(ctx, events.TypeOrderCreated, order.UserID, events.OrderCreated{
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
		Items:   order.Items,
	})
	o.log.Info().Str("order_id", order.ID).Str("user_id", order.UserID).
		Int64("total", order.Total).Msg("checkout committed")
	return order, nil
}

// replay resolves key to an already-created order, consulting the redis fast
// path first and the unique order index as the source of truth.
func (o *Orchestrator) replay(ctx context.Context, key string) (*domain.Order, bool) {
	if o.idem != nil {
		if orderID, ok := o.idem.Lookup(ctx, key); ok {
			if order, err := o.orders.GetOrder(ctx, orderID); err == nil {
				return order, true
			}
		}
	}
	order, err := o.orders.GetOrderByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, false
	}
	return order, true
}

func deriveKey(buyerID string, c *domain.Cart) string {
	if c != nil && c.Version > 0 {
		return fmt.Sprintf("%s:v%d", buyerID, c.Version)
	}
	return uuid.NewString()
}

func itemsFromCart(c *domain.Cart) []ItemInput {
	if c == nil {
		return nil
	}
	out := make([]ItemInput, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, ItemInput{ProductID: it.ProductID, Size: it.Size, Quantity: it.Quantity})
	}
	return out
}

func validateAddress(a domain.ShippingAddress) error {
	if a.Name == "" || a.Phone == "" || a.Address == "" || a.City == "" || a.PostalCode == "" {
		return domain.ValidationError("shipping address requires name, phone, address, city and postal code")
	}
	return nil
}
