package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name          string          `json:"name"           validate:"required,min=2,max=200"`
	Barcode       string          `json:"barcode"        validate:"required,min=3,max=64"`
	Description   string          `json:"description"    validate:"max=2000"`
	CategoryID    string          `json:"category_id"`
	TypeID        string          `json:"type_id"`
	LocationID    string          `json:"location_id"`
	ProviderID    string          `json:"provider_id"`
	Quantity      int             `json:"quantity"       validate:"min=0"`
	MinQuantity   int             `json:"min_quantity"   validate:"min=0"`
	Cost          decimal.Decimal `json:"cost"           validate:"min=0"`
	Price         decimal.Decimal `json:"price"          validate:"min=0"`
	VATPercentage decimal.Decimal `json:"vat_percentage" validate:"min=0,max=100"`
	WooCommerceID *int64          `json:"woocommerce_id" validate:"omitempty,min=1"`
}

// UpdateProductRequest is a partial update: nil fields are left untouched.
type UpdateProductRequest struct {
	Name          *string          `json:"name"           validate:"omitempty,min=2,max=200"`
	Barcode       *string          `json:"barcode"        validate:"omitempty,min=3,max=64"`
	Description   *string          `json:"description"    validate:"omitempty,max=2000"`
	CategoryID    *string          `json:"category_id"`
	TypeID        *string          `json:"type_id"`
	LocationID    *string          `json:"location_id"`
	ProviderID    *string          `json:"provider_id"`
	MinQuantity   *int             `json:"min_quantity"   validate:"omitempty,min=0"`
	Cost          *decimal.Decimal `json:"cost"           validate:"omitempty,min=0"`
	Price         *decimal.Decimal `json:"price"          validate:"omitempty,min=0"`
	VATPercentage *decimal.Decimal `json:"vat_percentage" validate:"omitempty,min=0,max=100"`
	WooCommerceID *int64           `json:"woocommerce_id" validate:"omitempty,min=0"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"max=200"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	CategoryID string `form:"category_id"`
	TypeID     string `form:"type_id"`
	LocationID string `form:"location_id"`
	ProviderID string `form:"provider_id"`
	Search     string `form:"search"`
	Barcode    string `form:"barcode"`
	Stock      string `form:"stock"            validate:"omitempty,oneof=low out"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type StockMovementFilter struct {
	ProductID string `form:"product_id"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Barcode         string          `json:"barcode"`
	Description     string          `json:"description,omitempty"`
	CategoryID      string          `json:"category_id"`
	CategoryName    string          `json:"category_name,omitempty"`
	TypeID          string          `json:"type_id"`
	TypeName        string          `json:"type_name,omitempty"`
	LocationID      string          `json:"location_id"`
	LocationName    string          `json:"location_name,omitempty"`
	ProviderID      string          `json:"provider_id"`
	ProviderName    string          `json:"provider_name,omitempty"`
	Quantity        int             `json:"quantity"`
	MinQuantity     int             `json:"min_quantity"`
	Cost            decimal.Decimal `json:"cost"`
	Price           decimal.Decimal `json:"price"`
	VATPercentage   decimal.Decimal `json:"vat_percentage"`
	PriceWithoutVAT decimal.Decimal `json:"price_without_vat"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	MarginPct       decimal.Decimal `json:"margin_pct"`
	StockStatus     string          `json:"stock_status"`
	WooCommerceID   *int64          `json:"woocommerce_id"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type StockAdjustmentResponse struct {
	Product        ProductResponse `json:"product"`
	Delta          int             `json:"delta"`
	QuantityBefore int             `json:"quantity_before"`
	QuantityAfter  int             `json:"quantity_after"`
}

type StockMovementItem struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Delta          int    `json:"delta"`
	QuantityBefore int    `json:"quantity_before"`
	QuantityAfter  int    `json:"quantity_after"`
	Reason         string `json:"reason"`
	ReferenceID    string `json:"reference_id,omitempty"`
	UserID         string `json:"user_id"`
	CreatedAt      string `json:"created_at"`
}
