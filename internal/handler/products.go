package handler

import (
	"net/http"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/middleware"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a product
// @Tags         products
// @Security     BearerAuth
// @Param        body  body     dto.CreateProductRequest  true  "Product"
// @Success      201   {object} dto.ProductResponse
// @Failure      409   {object} apierror.APIError  "barcode already used"
// @Failure      422   {object} apierror.ValidationError
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List products
// @Description  Filters combine; search is a name prefix match. stock=low includes out-of-stock products.
// @Tags         products
// @Security     BearerAuth
// @Param        category_id  query  string  false  "Category id"
// @Param        location_id  query  string  false  "Location id"
// @Param        search       query  string  false  "Name prefix"
// @Param        stock        query  string  false  "low | out"
// @Param        page         query  int     false  "Page (default 1)"
// @Param        limit        query  int     false  "Page size (default 20, max 100)"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByBarcode serves the scanner lookup.
func (h *ProductsHandler) GetByBarcode(c *gin.Context) {
	resp, err := h.svc.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Update(c *gin.Context) {
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock godoc
// @Summary      Adjust stock by a signed delta
// @Tags         products
// @Security     BearerAuth
// @Param        id    path     string                  true  "Product id"
// @Param        body  body     dto.AdjustStockRequest  true  "Delta and reason"
// @Success      200   {object} dto.StockAdjustmentResponse
// @Failure      409   {object} apierror.APIError  "would go below zero"
// @Router       /v1/products/{id}/stock [patch]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), middleware.GetActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "total": len(resp)})
}

// PriceHistory godoc
// @Summary      Price history of a product
// @Description  Newest first. Entries are immutable.
// @Tags         products
// @Security     BearerAuth
// @Param        id     path   string  true   "Product id"
// @Param        limit  query  int     false  "Entries (default 50, max 200)"
// @Success      200  {object}  dto.PriceHistoryListResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/products/{id}/price-history [get]
func (h *ProductsHandler) PriceHistory(c *gin.Context) {
	resp, err := h.svc.PriceHistory(c.Request.Context(), c.Param("id"), intQuery(c, "limit", 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) StockMovements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.StockMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
