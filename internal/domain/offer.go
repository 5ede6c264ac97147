package domain

import "time"

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	OfferStatusDeclined OfferStatus = "DECLINED"
)

// IsTerminal reports whether the status is absorbing. PENDING is the only
// non-terminal offer status.
func (s OfferStatus) IsTerminal() bool {
	return s == OfferStatusAccepted || s == OfferStatusDeclined
}

// Offer is a buyer-initiated price proposal on a product, awaiting the
// seller's decision. SellerID is copied from the product at creation time.
type Offer struct {
	ID        string      `bson:"_id,omitempty" json:"id"`
	ProductID string      `bson:"product_id" json:"product_id"`
	BuyerID   string      `bson:"buyer_id" json:"buyer_id"`
	SellerID  string      `bson:"seller_id" json:"seller_id"`
	Price     int64       `bson:"price" json:"price"` // minor units
	Status    OfferStatus `bson:"status" json:"status"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}
