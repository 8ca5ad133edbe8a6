package model

import "time"

// Product is a stock-keeping item. Category, type, location and provider are
// plain document ids; nothing enforces that the referenced documents exist.
type Product struct {
	ID            string     `firestore:"-"`
	Name          string     `firestore:"name"`
	Barcode       string     `firestore:"barcode"`
	Description   string     `firestore:"description,omitempty"`
	CategoryID    string     `firestore:"categoryId"`
	TypeID        string     `firestore:"typeId"`
	LocationID    string     `firestore:"locationId"`
	ProviderID    string     `firestore:"providerId"`
	Quantity      int        `firestore:"quantity"`
	MinQuantity   int        `firestore:"minQuantity"`
	Cost          float64    `firestore:"cost"`
	Price         float64    `firestore:"price"`
	VATPercentage float64    `firestore:"vatPercentage"`
	WooCommerceID *int64     `firestore:"wooCommerceId,omitempty"`
	LastWooSyncAt *time.Time `firestore:"lastWooSyncAt,omitempty"`
	CreatedAt     time.Time  `firestore:"createdAt"`
	UpdatedAt     time.Time  `firestore:"updatedAt"`
}

// Stock status labels derived from Quantity and MinQuantity.
const (
	StockOK  = "ok"
	StockLow = "low"
	StockOut = "out"
)

// StockStatus classifies the current quantity against the reorder threshold.
func (p *Product) StockStatus() string {
	switch {
	case p.Quantity <= 0:
		return StockOut
	case p.Quantity <= p.MinQuantity:
		return StockLow
	default:
		return StockOK
	}
}

// IsLinkedToWoo reports whether the product is mapped to a WooCommerce product.
func (p *Product) IsLinkedToWoo() bool {
	return p.WooCommerceID != nil && *p.WooCommerceID > 0
}
