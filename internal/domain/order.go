package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

var validOrderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:   {OrderStatusPaid: true, OrderStatusCancelled: true},
	OrderStatusPaid:      {},
	OrderStatusCancelled: {},
}

// CanTransitionOrder reports whether an order may move from one status to
// another. PAID and CANCELLED are terminal.
func CanTransitionOrder(from, to OrderStatus) bool {
	return validOrderTransitions[from][to]
}

// OrderItem is an immutable snapshot of a product line at checkout time.
// Price is the authoritative catalog price captured at commit, independent of
// later catalog changes.
type OrderItem struct {
	ProductID   string `bson:"product_id" json:"product_id"`
	ProductName string `bson:"product_name" json:"product_name"`
	Size        Size   `bson:"size" json:"size"`
	Quantity    int    `bson:"quantity" json:"quantity"`
	Price       int64  `bson:"price" json:"price"`
}

type ShippingAddress struct {
	Name       string `bson:"name" json:"name"`
	Phone      string `bson:"phone" json:"phone"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
}

type Order struct {
	ID              string          `bson:"_id,omitempty" json:"id"`
	UserID          string          `bson:"user_id" json:"user_id"`
	Items           []OrderItem     `bson:"items" json:"items"`
	Total           int64           `bson:"total" json:"total"`
	Status          OrderStatus     `bson:"status" json:"status"`
	ShippingAddress ShippingAddress `bson:"shipping_address" json:"shipping_address"`
	// IdempotencyKey is unique across orders; a retried checkout with the
	// same key returns this order instead of creating another.
	IdempotencyKey string    `bson:"idempotency_key" json:"-"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
