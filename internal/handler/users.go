package handler

import (
	"net/http"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/middleware"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type UsersHandler struct{ svc service.UserService }

func NewUsersHandler(svc service.UserService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func (h *UsersHandler) Me(c *gin.Context) {
	resp, err := h.svc.Me(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsersHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// SetRole godoc
// @Summary      Set a user's role
// @Description  Writes the role custom claim. It applies once the user's ID token refreshes.
// @Tags         users
// @Security     BearerAuth
// @Param        uid   path     string              true  "Firebase uid"
// @Param        body  body     dto.SetRoleRequest  true  "Role"
// @Success      200   {object} dto.UserResponse
// @Failure      409   {object} apierror.APIError  "admins cannot demote themselves"
// @Router       /v1/users/{uid}/role [put]
func (h *UsersHandler) SetRole(c *gin.Context) {
	var req dto.SetRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetRole(c.Request.Context(), middleware.GetActor(c), c.Param("uid"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
