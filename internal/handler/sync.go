package handler

import (
	"io"
	"net/http"

	"github.com/brehash/kscinventory-sub002/internal/apierror"
	"github.com/brehash/kscinventory-sub002/internal/middleware"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// WooSignatureHeader carries the base64 HMAC-SHA256 of the webhook body.
const WooSignatureHeader = "X-WC-Webhook-Signature"

// maxWebhookBody bounds webhook payloads; large shop orders stay well below.
const maxWebhookBody = 2 << 20

type SyncHandler struct{ svc service.SyncService }

func NewSyncHandler(svc service.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// SyncOrders godoc
// @Summary      Pull WooCommerce orders
// @Description  Imports orders modified since the last run and applies their stock effect. Safe to repeat.
// @Tags         sync
// @Security     BearerAuth
// @Success      200  {object}  model.SyncResult
// @Failure      409  {object}  apierror.APIError  "sync already running"
// @Failure      503  {object}  apierror.APIError  "woocommerce not configured or unreachable"
// @Router       /v1/sync/orders [post]
func (h *SyncHandler) SyncOrders(c *gin.Context) {
	resp, err := h.svc.SyncOrders(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SyncHandler) MapProducts(c *gin.Context) {
	resp, err := h.svc.MapProducts(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SyncHandler) Status(c *gin.Context) {
	resp, err := h.svc.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PushStock writes one product's quantity to the shop synchronously.
func (h *SyncHandler) PushStock(c *gin.Context) {
	if err := h.svc.PushStock(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pushed": true})
}

// Webhook godoc
// @Summary      WooCommerce order webhook
// @Description  Receives order.created / order.updated deliveries. Authenticated by the X-WC-Webhook-Signature header, not a Firebase token.
// @Tags         sync
// @Param        X-WC-Webhook-Signature  header  string  true  "base64 HMAC-SHA256 of the body"
// @Success      200  {object}  dto.WebhookResponse
// @Failure      401  {object}  apierror.APIError
// @Router       /webhooks/woocommerce/orders [post]
func (h *SyncHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidInput, "Could not read body"))
		return
	}
	resp, err := h.svc.HandleWebhook(c.Request.Context(), body, c.GetHeader(WooSignatureHeader))
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("outcome", resp.Outcome).
		Str("order_id", resp.OrderID).
		Msg("woocommerce webhook handled")
	c.JSON(http.StatusOK, resp)
}
