package dto

import (
	"github.com/brehash/kscinventory-sub002/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity"   validate:"required,min=1"`
	Price     *decimal.Decimal `json:"price"` // overrides the catalogue price
}

type CreateOrderRequest struct {
	CustomerName  string             `json:"customer_name"  validate:"required,min=2,max=200"`
	CustomerEmail string             `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string             `json:"customer_phone" validate:"max=40"`
	Billing       model.Address      `json:"billing"`
	Shipping      model.Address      `json:"shipping"`
	Items         []OrderItemRequest `json:"items"          validate:"required,min=1,dive"`
	ShippingCost  decimal.Decimal    `json:"shipping_cost"  validate:"min=0"`
	Discount      decimal.Decimal    `json:"discount"       validate:"min=0"`
	Currency      string             `json:"currency"       validate:"omitempty,len=3"`
	PaymentMethod string             `json:"payment_method" validate:"max=100"`
	Notes         string             `json:"notes"          validate:"max=2000"`
	Status        string             `json:"status"         validate:"omitempty,oneof=pending processing on-hold completed"`
}

type UpdateOrderRequest struct {
	CustomerName  *string        `json:"customer_name"  validate:"omitempty,min=2,max=200"`
	CustomerEmail *string        `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone *string        `json:"customer_phone" validate:"omitempty,max=40"`
	Billing       *model.Address `json:"billing"`
	Shipping      *model.Address `json:"shipping"`
	PaymentMethod *string        `json:"payment_method" validate:"omitempty,max=100"`
	Notes         *string        `json:"notes"          validate:"omitempty,max=2000"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing on-hold completed cancelled refunded failed"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type OrderFilter struct {
	Status string `form:"status"           validate:"omitempty,oneof=pending processing on-hold completed cancelled refunded failed"`
	Source string `form:"source"           validate:"omitempty,oneof=manual woocommerce"`
	Search string `form:"search"`
	From   string `form:"from"             validate:"omitempty,datetime=2006-01-02"`
	To     string `form:"to"               validate:"omitempty,datetime=2006-01-02"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone string              `json:"customer_phone"`
	Billing       model.Address       `json:"billing"`
	Shipping      model.Address       `json:"shipping"`
	Items         []OrderItemResponse `json:"items"`
	Status        string              `json:"status"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ShippingCost  decimal.Decimal     `json:"shipping_cost"`
	Discount      decimal.Decimal     `json:"discount"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	Currency      string              `json:"currency"`
	PaymentMethod string              `json:"payment_method"`
	Notes         string              `json:"notes,omitempty"`
	Source        string              `json:"source"`
	WooCommerceID *int64              `json:"woocommerce_id"`
	StockDeducted bool                `json:"stock_deducted"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
	CompletedAt   *string             `json:"completed_at"`
}

type OrderListResponse struct {
	Data       []OrderResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
