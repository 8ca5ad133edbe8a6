package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/infra"
	"github.com/brehash/kscinventory-sub002/internal/middleware"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

// Create godoc
// @Summary      Create a manual order
// @Description  Snapshots product name, SKU and price on each line and deducts stock for every line in one transaction.
// @Tags         orders
// @Security     BearerAuth
// @Param        body  body     dto.CreateOrderRequest  true  "Order"
// @Success      201   {object} dto.OrderResponse
// @Failure      400   {object} apierror.APIError  "unknown product or discount above order value"
// @Failure      409   {object} apierror.APIError  "insufficient stock"
// @Router       /v1/orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
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

func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
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

func (h *OrdersHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Update(c *gin.Context) {
	var req dto.UpdateOrderRequest
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

// UpdateStatus godoc
// @Summary      Change order status
// @Description  Leaving pending/processing/on-hold/completed releases the order's stock; entering them deducts it again.
// @Tags         orders
// @Security     BearerAuth
// @Param        id    path     string                        true  "Order id"
// @Param        body  body     dto.UpdateOrderStatusRequest  true  "New status"
// @Success      200   {object} dto.OrderResponse
// @Failure      409   {object} apierror.APIError  "transition not allowed or insufficient stock"
// @Router       /v1/orders/{id}/status [patch]
func (h *OrdersHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), middleware.GetActor(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PDF renders the order as an A4 packing slip.
func (h *OrdersHandler) PDF(c *gin.Context) {
	o, err := h.svc.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.WriteOrderPDF(o, &buf); err != nil {
		respondError(c, fmt.Errorf("render order pdf: %w", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="order-%s.pdf"`, o.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
