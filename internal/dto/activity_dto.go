package dto

type ActivityFilter struct {
	EntityType string `form:"entity_type"`
	EntityID   string `form:"entity_id"`
	UserID     string `form:"user_id"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ActivityItem struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details,omitempty"`
	Timestamp  string `json:"timestamp"`
}
