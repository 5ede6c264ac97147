package cache

import (
	"context"
	"errors"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
)

// CartCache is defined by its consumers; redis is one implementation.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
