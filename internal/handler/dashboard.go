package handler

import (
	"net/http"
	"strconv"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc      service.DashboardService
	activity service.ActivityService
}

func NewDashboardHandler(svc service.DashboardService, activity service.ActivityService) *DashboardHandler {
	return &DashboardHandler{svc: svc, activity: activity}
}

// Stats godoc
// @Summary      Dashboard cards
// @Description  Cached in Redis; ?refresh=true recomputes.
// @Tags         dashboard
// @Security     BearerAuth
// @Param        refresh  query  bool  false  "Bypass the cache"
// @Success      200  {object}  dto.DashboardStats
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	resp, err := h.svc.Stats(c.Request.Context(), refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DashboardHandler) Activity(c *gin.Context) {
	var filter dto.ActivityFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.activity.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
