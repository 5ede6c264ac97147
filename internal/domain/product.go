package domain

import "time"

// ListingStatus tells whether a product can still be purchased or offered on.
type ListingStatus string

const (
	ListingActive ListingStatus = "ACTIVE"
	ListingSold   ListingStatus = "SOLD" // terminal; no further purchase or offer activity
)

// Product is the catalog aggregate. The catalog collaborator owns most of its
// fields; this engine only ever mutates stock, sold and listing status, and
// only through the inventory ledger.
type Product struct {
	ID            string        `bson:"_id,omitempty" json:"id"`
	SellerID      string        `bson:"seller_id" json:"seller_id"`
	Name          string        `bson:"name" json:"name"`
	Price         int64         `bson:"price" json:"price"` // minor units
	Stock         int           `bson:"stock" json:"stock"`
	Sold          int           `bson:"sold" json:"sold"`
	ListingStatus ListingStatus `bson:"listing_status" json:"listing_status"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updated_at"`
}

// Purchasable reports whether the listing can satisfy a purchase of qty units.
func (p *Product) Purchasable(qty int) bool {
	return p.ListingStatus == ListingActive && p.Stock >= qty
}
