// Package memory implements the store contracts with in-process maps. It
// backs tests and local development; a single RWMutex gives the conditional
// mutations the same linearizability the mongo store gets from filtered
// updates.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	carts    map[string]*domain.Cart // keyed by user id
	orders   map[string]*domain.Order
	offers   map[string]*domain.Offer
	idemKeys map[string]string // idempotency key -> order id
}

func NewStore() *Store {
	return &Store{
		products: make(map[string]*domain.Product),
		carts:    make(map[string]*domain.Cart),
		orders:   make(map[string]*domain.Order),
		offers:   make(map[string]*domain.Offer),
		idemKeys: make(map[string]string),
	}
}

// --- ProductStore ---

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) InsertProduct(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *Store) ReserveStock(_ context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return store.ErrProductNotFound
	}
	if p.ListingStatus != domain.ListingActive {
		return store.ErrListingClosed
	}
	if p.Stock < qty {
		return store.ErrInsufficientStock
	}
	p.Stock -= qty
	p.Sold += qty
	p.UpdatedAt = time.Now()
	return nil
}

func (s *Store) ReleaseStock(_ context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return store.ErrProductNotFound
	}
	p.Stock += qty
	p.Sold -= qty
	p.UpdatedAt = time.Now()
	return nil
}

func (s *Store) MarkSold(_ context.Context, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return 0, store.ErrProductNotFound
	}
	if p.ListingStatus != domain.ListingActive {
		return 0, store.ErrListingClosed
	}
	prev := p.Stock
	p.ListingStatus = domain.ListingSold
	p.Stock = 0
	p.UpdatedAt = time.Now()
	return prev, nil
}

func (s *Store) Relist(_ context.Context, productID string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return store.ErrProductNotFound
	}
	p.ListingStatus = domain.ListingActive
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}

// --- CartStore ---

func (s *Store) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, store.ErrCartNotFound
	}
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	return &cp, nil
}

func (s *Store) UpsertCart(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	s.carts[cart.UserID] = &cp
	return nil
}

func (s *Store) DeleteCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

// --- OrderStore ---

func (s *Store) CreateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.IdempotencyKey != "" {
		if _, exists := s.idemKeys[order.IdempotencyKey]; exists {
			return store.ErrDuplicateOrder
		}
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	s.orders[order.ID] = &cp
	if order.IdempotencyKey != "" {
		s.idemKeys[order.IdempotencyKey] = order.ID
	}
	return nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	s.mu.RLock()
	id, ok := s.idemKeys[key]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	return s.GetOrder(ctx, id)
}

func (s *Store) ListOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			cp := *o
			cp.Items = append([]domain.OrderItem(nil), o.Items...)
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	if o.Status != from {
		return nil, store.ErrStatusConflict
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	if o.IdempotencyKey != "" {
		delete(s.idemKeys, o.IdempotencyKey)
	}
	delete(s.orders, id)
	return nil
}

// --- OfferStore ---

func (s *Store) CreateOffer(_ context.Context, offer *domain.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offer.ID == "" {
		offer.ID = uuid.NewString()
	}
	now := time.Now()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	cp := *offer
	s.offers[offer.ID] = &cp
	return nil
}

func (s *Store) GetOffer(_ context.Context, id string) (*domain.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, store.ErrOfferNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *Store) HasPendingOffer(_ context.Context, productID, buyerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.offers {
		if o.ProductID == productID && o.BuyerID == buyerID && o.Status == domain.OfferStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListOffersForUser(_ context.Context, userID string) ([]*domain.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Offer
	for _, o := range s.offers {
		if o.BuyerID == userID || o.SellerID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) UpdateOfferStatus(_ context.Context, id string, to domain.OfferStatus) (*domain.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, store.ErrOfferNotFound
	}
	if o.Status != domain.OfferStatusPending {
		return nil, store.ErrOfferNotPending
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	cp := *o
	return &cp, nil
}

func (s *Store) DeclineSiblings(_ context.Context, productID, exceptOfferID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	now := time.Now()
	for _, o := range s.offers {
		if o.ProductID == productID && o.ID != exceptOfferID && o.Status == domain.OfferStatusPending {
			o.Status = domain.OfferStatusDeclined
			o.UpdatedAt = now
			n++
		}
	}
	return n, nil
}
