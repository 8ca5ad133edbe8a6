package model

import "time"

// StockMovement records every quantity change of a product.
type StockMovement struct {
	ID             string    `firestore:"-"`
	ProductID      string    `firestore:"productId"`
	ProductName    string    `firestore:"productName"`
	Delta          int       `firestore:"delta"` // positive = in, negative = out
	QuantityBefore int       `firestore:"quantityBefore"`
	QuantityAfter  int       `firestore:"quantityAfter"`
	Reason         string    `firestore:"reason"` // adjustment | order | order_release | csv_import
	ReferenceID    string    `firestore:"referenceId,omitempty"`
	UserID         string    `firestore:"userId"`
	CreatedAt      time.Time `firestore:"createdAt"`
}

const (
	MovementAdjustment   = "adjustment"
	MovementOrder        = "order"
	MovementOrderRelease = "order_release"
	MovementCSVImport    = "csv_import"
)
