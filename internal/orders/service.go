// Package orders exposes the post-checkout order lifecycle: owner reads and
// the dashboard's status transitions.
package orders

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store"
)

// RoleAdmin is the only role allowed to move orders between statuses.
const RoleAdmin = "admin"

type Service struct {
	orders store.OrderStore
	log    zerolog.Logger
}

func NewService(orders store.OrderStore, log zerolog.Logger) *Service {
	return &Service{orders: orders, log: log.With().Str("component", "orders").Logger()}
}

// Get returns the order when the caller owns it or is an admin.
func (s *Service) Get(ctx context.Context, callerID, callerRole, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrOrderNotFound) {
		return nil, domain.NotFound("order not found")
	}
	if err != nil {
		return nil, domain.Internal("failed to load order", err)
	}
	if order.UserID != callerID && callerRole != RoleAdmin {
		return nil, domain.Forbidden("order belongs to another user")
	}
	return order, nil
}

// ListForUser returns the caller's own orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if userID == "" {
		return nil, domain.Unauthorized("missing user identity")
	}
	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal("failed to list orders", err)
	}
	return orders, nil
}

// SetStatus moves an order along PENDING -> PAID | CANCELLED. The update is
// conditional on the status the caller observed still holding, so two
// dashboard operators cannot both win.
func (s *Service) SetStatus(ctx context.Context, callerRole, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	if callerRole != RoleAdmin {
		return nil, domain.Forbidden("only admins can change order status")
	}
	if !to.Valid() {
		return nil, domain.ValidationError("status must be PENDING, PAID or CANCELLED")
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrOrderNotFound) {
		return nil, domain.NotFound("order not found")
	}
	if err != nil {
		return nil, domain.Internal("failed to load order", err)
	}
	if !domain.CanTransitionOrder(order.Status, to) {
		return nil, domain.Conflict("order cannot move from " + string(order.Status) + " to " + string(to))
	}

	updated, err := s.orders.UpdateOrderStatus(ctx, orderID, order.Status, to)
	switch {
	case err == nil:
		s.log.Info().Str("order_id", orderID).Str("from", string(order.Status)).
			Str("to", string(to)).Msg("order status updated")
		return updated, nil
	case errors.Is(err, store.ErrStatusConflict):
		return nil, domain.Conflict("order status changed concurrently")
	case errors.Is(err, store.ErrOrderNotFound):
		return nil, domain.NotFound("order not found")
	default:
		return nil, domain.Internal("failed to update order status", err)
	}
}
