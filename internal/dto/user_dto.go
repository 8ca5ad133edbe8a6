package dto

type UserResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin manager staff"`
}
