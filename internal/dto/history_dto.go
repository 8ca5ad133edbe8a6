package dto

import "github.com/shopspring/decimal"

// PriceHistoryItem is one row in a product's price-change history.
type PriceHistoryItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	OldCost       decimal.Decimal `json:"old_cost"`
	NewCost       decimal.Decimal `json:"new_cost"`
	OldPrice      decimal.Decimal `json:"old_price"`
	NewPrice      decimal.Decimal `json:"new_price"`
	CostChangePct decimal.Decimal `json:"cost_change_pct"`
	Reason        string          `json:"reason"`
	ChangedBy     string          `json:"changed_by"`
	ChangedByName string          `json:"changed_by_name"`
	ChangedAt     string          `json:"changed_at"`
}

// PriceHistoryListResponse is returned by GET /v1/products/:id/price-history.
type PriceHistoryListResponse struct {
	Data  []PriceHistoryItem `json:"data"`
	Limit int                `json:"limit"`
}
