package model

import "time"

// ActivityLog records who did what to which entity, and when.
type ActivityLog struct {
	ID         string    `firestore:"-"`
	UserID     string    `firestore:"userId"`
	UserName   string    `firestore:"userName"`
	Action     string    `firestore:"action"`
	EntityType string    `firestore:"entityType"`
	EntityID   string    `firestore:"entityId"`
	EntityName string    `firestore:"entityName"`
	Details    string    `firestore:"details,omitempty"`
	Timestamp  time.Time `firestore:"timestamp"`
}

// Activity actions.
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionAdjustStock  = "adjust_stock"
	ActionStatusChange = "status_change"
	ActionSync         = "sync"
	ActionImport       = "import"
	ActionRoleChange   = "role_change"
)

// Entity types.
const (
	EntityProduct = "product"
	EntityOrder   = "order"
	EntityCatalog = "catalog"
	EntityUser    = "user"
	EntitySync    = "woocommerce"
)
