package model

// Firestore collection names. The layout predates this service, so names keep
// the camelCase the existing documents use.
const (
	CollectionProducts       = "products"
	CollectionPriceHistory   = "priceHistory" // subcollection of products/{id}
	CollectionCategories     = "categories"
	CollectionProductTypes   = "productTypes"
	CollectionLocations      = "locations"
	CollectionProviders      = "providers"
	CollectionOrders         = "orders"
	CollectionActivityLogs   = "activityLogs"
	CollectionStockMovements = "stockMovements"
	CollectionUsers          = "users"
	CollectionSettings       = "settings"
)
