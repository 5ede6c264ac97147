// Package cart keeps the buyer's working set of items. The authoritative
// copy lives in the store; redis fronts reads and is invalidated on every
// write. Carts are advisory: nothing here reserves stock.
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/cache"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store"
)

const maxItemQuantity = 99

type Service struct {
	repo  store.CartStore
	cache cache.CartCache
	sfg   singleflight.Group // collapses concurrent misses for the same user
	log   zerolog.Logger
}

func NewService(repo store.CartStore, c cache.CartCache, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: c,
		log:   log.With().Str("component", "cart").Logger(),
	}
}

// Get returns the user's cart, reading through the cache. A user without a
// cart gets an empty one rather than an error.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, domain.Unauthorized("missing user identity")
	}

	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		c, err := s.cache.Get(ctx, userID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("cart cache get failed, falling through to store")
		}

		c, err = s.repo.GetCart(ctx, userID)
		if errors.Is(err, store.ErrCartNotFound) {
			now := time.Now()
			return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
		}
		if err != nil {
			return nil, domain.Internal("failed to load cart", err)
		}

		go func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(cacheCtx, userID, c); err != nil {
				s.log.Warn().Err(err).Str("user_id", userID).Msg("cart cache set failed")
			}
		}()

		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// Sync replaces the cart's contents with the client's current state and bumps
// the version. The version feeds the checkout idempotency token, so two
// checkouts of the same synced state collapse into one order.
func (s *Service) Sync(ctx context.Context, userID string, items []domain.CartItem) (*domain.Cart, error) {
	if userID == "" {
		return nil, domain.Unauthorized("missing user identity")
	}
	for _, it := range items {
		if it.ProductID == "" {
			return nil, domain.ValidationError("cart item missing product id")
		}
		if !it.Size.Valid() {
			return nil, domain.ValidationError("invalid size: must be S, M, L or XL")
		}
		if it.Quantity < 1 || it.Quantity > maxItemQuantity {
			return nil, domain.ValidationError("quantity must be between 1 and 99")
		}
	}

	now := time.Now()
	c, err := s.repo.GetCart(ctx, userID)
	switch {
	case errors.Is(err, store.ErrCartNotFound):
		c = &domain.Cart{UserID: userID, CreatedAt: now}
	case err != nil:
		return nil, domain.Internal("failed to load cart", err)
	}

	for i := range items {
		if items[i].AddedAt.IsZero() {
			items[i].AddedAt = now
		}
	}
	c.Items = items
	c.Version++
	c.UpdatedAt = now

	if err := s.repo.UpsertCart(ctx, c); err != nil {
		return nil, domain.Internal("failed to save cart", err)
	}
	s.invalidate(userID)
	return c, nil
}

// Clear drops the cart entirely. Checkout calls this after the order commits.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.DeleteCart(ctx, userID); err != nil {
		return domain.Internal("failed to clear cart", err)
	}
	s.invalidate(userID)
	return nil
}

func (s *Service) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("cart cache invalidate failed")
	}
}
