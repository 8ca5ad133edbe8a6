package dto

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CreateCatalogRequest struct {
	Name        string `json:"name"         validate:"required,min=2,max=100"`
	Description string `json:"description"  validate:"max=500"`
	ContactName string `json:"contact_name" validate:"max=100"`
	Email       string `json:"email"        validate:"omitempty,email"`
	Phone       string `json:"phone"        validate:"max=40"`
	Address     string `json:"address"      validate:"max=300"`
	Website     string `json:"website"      validate:"omitempty,url"`
}

type UpdateCatalogRequest struct {
	Name        *string `json:"name"         validate:"omitempty,min=2,max=100"`
	Description *string `json:"description"  validate:"omitempty,max=500"`
	ContactName *string `json:"contact_name" validate:"omitempty,max=100"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Phone       *string `json:"phone"        validate:"omitempty,max=40"`
	Address     *string `json:"address"      validate:"omitempty,max=300"`
	Website     *string `json:"website"      validate:"omitempty,url"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type CatalogResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ContactName  string `json:"contact_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Website      string `json:"website,omitempty"`
	ProductCount *int64 `json:"product_count,omitempty"`
}
