package domain

import "time"

// Size is the garment size recorded on a cart or order line.
type Size string

const (
	SizeS  Size = "S"
	SizeM  Size = "M"
	SizeL  Size = "L"
	SizeXL Size = "XL"
)

func (s Size) Valid() bool {
	switch s {
	case SizeS, SizeM, SizeL, SizeXL:
		return true
	}
	return false
}

type Cart struct {
	ID     string     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID string     `bson:"user_id" json:"user_id"`
	Items  []CartItem `bson:"items" json:"items"`
	// Version increments on every sync; the checkout idempotency token is
	// derived from it so a retried checkout of the same cart state cannot
	// create a second order.
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ProductID  string    `bson:"product_id" json:"product_id"`
	Size       Size      `bson:"size" json:"size"`
	Quantity   int       `bson:"quantity" json:"quantity"`
	PriceAtAdd int64     `bson:"price_at_add" json:"price_at_add"` // display only, never trusted at checkout
	AddedAt    time.Time `bson:"added_at" json:"added_at"`
}
