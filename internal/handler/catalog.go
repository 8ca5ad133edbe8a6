package handler

import (
	"net/http"
	"strconv"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/middleware"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves one lookup collection; the router mounts one per kind.
type CatalogHandler struct {
	svc  service.CatalogService
	kind model.CatalogKind
}

func NewCatalogHandler(svc service.CatalogService, kind model.CatalogKind) *CatalogHandler {
	return &CatalogHandler{svc: svc, kind: kind}
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.CreateCatalogRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetActor(c), h.kind, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List returns every entry; ?counts=true adds the number of products using each.
func (h *CatalogHandler) List(c *gin.Context) {
	withCounts, _ := strconv.ParseBool(c.Query("counts"))
	resp, err := h.svc.List(c.Request.Context(), h.kind, withCounts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) Update(c *gin.Context) {
	var req dto.UpdateCatalogRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetActor(c), h.kind, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.GetActor(c), h.kind, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
