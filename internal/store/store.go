// Package store defines the storage contracts the engine depends on.
// Services consume these interfaces; the memory and mongo packages implement
// them.
package store

import (
	"context"
	"errors"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
)

// Common errors returned by store implementations.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrListingClosed     = errors.New("listing is not active")
	ErrCartNotFound      = errors.New("cart not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOfferNotFound     = errors.New("offer not found")
	ErrOfferNotPending   = errors.New("offer is not pending")
	ErrStatusConflict    = errors.New("status changed concurrently")
	ErrDuplicateOrder    = errors.New("order with this idempotency key already exists")
)

// ProductStore is the catalog surface this engine touches. Reads are open to
// every component; the conditional mutations are called only by the inventory
// ledger, which is the sole authority over stock, sold and listing status.
//
// Every mutation is a single conditional update: the store serializes
// concurrent calls on the same product so stock can never go negative and a
// reserve always observes a preceding mark-sold.
type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	InsertProduct(ctx context.Context, p *domain.Product) error

	// ReserveStock decrements stock and increments sold iff the listing is
	// ACTIVE and stock >= qty. ErrInsufficientStock or ErrListingClosed
	// otherwise.
	ReserveStock(ctx context.Context, productID string, qty int) error

	// ReleaseStock is the compensating increment for a reservation whose
	// later saga step failed.
	ReleaseStock(ctx context.Context, productID string, qty int) error

	// MarkSold claims an ACTIVE listing: sets status SOLD and stock 0,
	// returning the pre-claim stock so a failed follow-up can Relist.
	// ErrListingClosed if the listing was already SOLD.
	MarkSold(ctx context.Context, productID string) (prevStock int, err error)

	// Relist is the compensation for MarkSold: restores ACTIVE and the
	// given stock.
	Relist(ctx context.Context, productID string, stock int) error
}

type CartStore interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	// DeleteCart removes the user's cart; deleting an absent cart is not an
	// error.
	DeleteCart(ctx context.Context, userID string) error
}

type OrderStore interface {
	// CreateOrder inserts the order; ErrDuplicateOrder if an order with the
	// same idempotency key exists.
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	// UpdateOrderStatus flips status iff the order is currently in from.
	// ErrStatusConflict when a concurrent transition won.
	UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error)
	// DeleteOrder backs out an order created by a checkout saga whose final
	// step failed.
	DeleteOrder(ctx context.Context, id string) error
}

type OfferStore interface {
	CreateOffer(ctx context.Context, offer *domain.Offer) error
	GetOffer(ctx context.Context, id string) (*domain.Offer, error)
	// HasPendingOffer reports whether the buyer already holds a PENDING
	// offer on the product.
	HasPendingOffer(ctx context.Context, productID, buyerID string) (bool, error)
	ListOffersForUser(ctx context.Context, userID string) ([]*domain.Offer, error)
	// UpdateOfferStatus flips a PENDING offer to a terminal status.
	// ErrOfferNotPending when the offer was already processed.
	UpdateOfferStatus(ctx context.Context, id string, to domain.OfferStatus) (*domain.Offer, error)
	// DeclineSiblings moves every other PENDING offer on the product to
	// DECLINED, returning how many were declined.
	DeclineSiblings(ctx context.Context, productID, exceptOfferID string) (int64, error)
}
