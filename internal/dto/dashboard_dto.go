package dto

import "github.com/shopspring/decimal"

// BreakdownItem is one slice of a dashboard breakdown (per category, per location).
type BreakdownItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Products   int             `json:"products"`
	Units      int             `json:"units"`
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
}

// DashboardStats is the payload behind the dashboard cards.
type DashboardStats struct {
	TotalProducts        int             `json:"total_products"`
	TotalUnits           int             `json:"total_units"`
	InventoryCostValue   decimal.Decimal `json:"inventory_cost_value"`
	InventoryRetailValue decimal.Decimal `json:"inventory_retail_value"`
	PotentialProfit      decimal.Decimal `json:"potential_profit"`
	AverageMarginPct     decimal.Decimal `json:"average_margin_pct"`
	LowStockCount        int             `json:"low_stock_count"`
	OutOfStockCount      int             `json:"out_of_stock_count"`
	CategoryBreakdown    []BreakdownItem `json:"category_breakdown"`
	LocationBreakdown    []BreakdownItem `json:"location_breakdown"`
	OrdersByStatus       map[string]int  `json:"orders_by_status"`
	TotalOrders          int             `json:"total_orders"`
	PendingOrders        int             `json:"pending_orders"`
	Revenue              decimal.Decimal `json:"revenue"`
	RevenueThisMonth     decimal.Decimal `json:"revenue_this_month"`
	RecentActivity       []ActivityItem  `json:"recent_activity"`
	GeneratedAt          string          `json:"generated_at"`
	Cached               bool            `json:"cached"`
}
