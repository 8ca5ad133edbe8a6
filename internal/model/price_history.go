package model

import "time"

// PriceHistory records one cost/price change of a product. Entries live in the
// products/{id}/priceHistory subcollection and are never modified.
type PriceHistory struct {
	ID            string    `firestore:"-"`
	ProductID     string    `firestore:"productId"`
	OldCost       float64   `firestore:"oldCost"`
	NewCost       float64   `firestore:"newCost"`
	OldPrice      float64   `firestore:"oldPrice"`
	NewPrice      float64   `firestore:"newPrice"`
	Reason        string    `firestore:"reason"` // manual | csv_import | woo_sync | created
	ChangedBy     string    `firestore:"changedBy"`
	ChangedByName string    `firestore:"changedByName"`
	ChangedAt     time.Time `firestore:"changedAt"`
}

const (
	PriceReasonCreated   = "created"
	PriceReasonManual    = "manual"
	PriceReasonCSVImport = "csv_import"
	PriceReasonWooSync   = "woo_sync"
)
