// Package events publishes domain events for external consumers. Events
// inform; none of the engine's invariants depend on their delivery.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
)

const (
	TypeOrderCreated  = "order.created"
	TypeOfferAccepted = "offer.accepted"
)

// Envelope is the wire shape shared by every event on the topic. The
// event type travels both in the body and as a kafka header so consumers
// can route without decoding.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

type OrderCreated struct {
	OrderID string             `json:"order_id"`
	UserID  string             `json:"user_id"`
	Total   int64              `json:"total"`
	Items   []domain.OrderItem `json:"items"`
}

type OfferAccepted struct {
	OfferID   string `json:"offer_id"`
	ProductID string `json:"product_id"`
	BuyerID   string `json:"buyer_id"`
	SellerID  string `json:"seller_id"`
	Price     int64  `json:"price"`
}

// Publisher is what services depend on; the kafka implementation and the
// test fake both satisfy it.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any)
}

// NopPublisher drops everything; useful when kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) {}

func newEnvelope(eventType, producer string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Producer:   producer,
		Payload:    raw,
	}, nil
}
