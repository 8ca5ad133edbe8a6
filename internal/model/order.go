package model

import "time"

// Order statuses. They follow WooCommerce's vocabulary so imported orders map 1:1.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderOnHold     = "on-hold"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
	OrderRefunded   = "refunded"
	OrderFailed     = "failed"
)

// Order sources.
const (
	SourceManual      = "manual"
	SourceWooCommerce = "woocommerce"
)

// Address is a billing or shipping block.
type Address struct {
	FirstName string `firestore:"firstName" json:"first_name"`
	LastName  string `firestore:"lastName" json:"last_name"`
	Company   string `firestore:"company,omitempty" json:"company,omitempty"`
	Address1  string `firestore:"address1" json:"address_1"`
	Address2  string `firestore:"address2,omitempty" json:"address_2,omitempty"`
	City      string `firestore:"city" json:"city"`
	State     string `firestore:"state" json:"state"`
	Postcode  string `firestore:"postcode" json:"postcode"`
	Country   string `firestore:"country" json:"country"`
	Email     string `firestore:"email,omitempty" json:"email,omitempty"`
	Phone     string `firestore:"phone,omitempty" json:"phone,omitempty"`
}

// OrderItem is a line item. ProductID is empty when the line could not be
// matched to a local product (unknown SKU on an imported order).
type OrderItem struct {
	ProductID   string  `firestore:"productId"`
	ProductName string  `firestore:"productName"`
	SKU         string  `firestore:"sku"`
	Quantity    int     `firestore:"quantity"`
	Price       float64 `firestore:"price"`
	Total       float64 `firestore:"total"`
}

// Order is a customer order, either entered manually or imported from WooCommerce.
type Order struct {
	ID            string      `firestore:"-"`
	OrderNumber   string      `firestore:"orderNumber"`
	CustomerName  string      `firestore:"customerName"`
	CustomerEmail string      `firestore:"customerEmail"`
	CustomerPhone string      `firestore:"customerPhone"`
	Billing       Address     `firestore:"billing"`
	Shipping      Address     `firestore:"shipping"`
	Items         []OrderItem `firestore:"items"`
	Status        string      `firestore:"status"`
	Subtotal      float64     `firestore:"subtotal"`
	ShippingCost  float64     `firestore:"shippingCost"`
	Discount      float64     `firestore:"discount"`
	Tax           float64     `firestore:"tax"`
	Total         float64     `firestore:"total"`
	Currency      string      `firestore:"currency"`
	PaymentMethod string      `firestore:"paymentMethod"`
	Notes         string      `firestore:"notes,omitempty"`
	Source        string      `firestore:"source"`
	WooCommerceID *int64      `firestore:"wooCommerceId,omitempty"`
	StockDeducted bool        `firestore:"stockDeducted"`
	CreatedAt     time.Time   `firestore:"createdAt"`
	UpdatedAt     time.Time   `firestore:"updatedAt"`
	CompletedAt   *time.Time  `firestore:"completedAt,omitempty"`
}

// HoldsStock reports whether an order in the given status keeps its items
// reserved out of inventory.
func HoldsStock(status string) bool {
	switch status {
	case OrderPending, OrderProcessing, OrderOnHold, OrderCompleted:
		return true
	}
	return false
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderOnHold, OrderCompleted,
		OrderCancelled, OrderRefunded, OrderFailed:
		return true
	}
	return false
}
