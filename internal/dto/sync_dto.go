package dto

import "github.com/brehash/kscinventory-sub002/internal/model"

type MapProductsResponse struct {
	WooProducts   int      `json:"woo_products"`
	Mapped        int      `json:"mapped"`
	AlreadyLinked int      `json:"already_linked"`
	Unmatched     int      `json:"unmatched"`
	UnmatchedSKUs []string `json:"unmatched_skus"`
}

type SyncStatusResponse struct {
	Enabled          bool             `json:"enabled"`
	CircuitBreaker   string           `json:"circuit_breaker"`
	LastOrderSyncAt  *string          `json:"last_order_sync_at"`
	LastProductMapAt *string          `json:"last_product_map_at"`
	LastResult       model.SyncResult `json:"last_result"`
	LastError        string           `json:"last_error,omitempty"`
}

type WebhookResponse struct {
	OrderID string `json:"order_id"`
	Outcome string `json:"outcome"` // new | updated | skipped | ignored
}
