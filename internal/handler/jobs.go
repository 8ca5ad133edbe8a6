package handler

import (
	"context"
	"net/http"

	"github.com/brehash/kscinventory-sub002/internal/dto"

	"github.com/gin-gonic/gin"
)

// JobAdmin exposes the background queues. worker.Inspector implements it.
type JobAdmin interface {
	Stats(ctx context.Context) ([]dto.QueueStats, error)
	Replay(ctx context.Context, queue string, limit int) (int, error)
}

type JobsHandler struct{ jobs JobAdmin }

func NewJobsHandler(jobs JobAdmin) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

func (h *JobsHandler) Stats(c *gin.Context) {
	stats, err := h.jobs.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// Replay godoc
// @Summary      Replay dead-lettered jobs
// @Description  Moves up to ?limit entries (default 100) from dlq:jobs:{queue} back onto the queue.
// @Tags         jobs
// @Security     BearerAuth
// @Param        queue  path   string  true   "woo_stock | woo_order_status | email"
// @Param        limit  query  int     false  "Max entries"
// @Success      200  {object}  dto.ReplayResponse
// @Failure      400  {object}  apierror.APIError
// @Router       /v1/jobs/{queue}/replay [post]
func (h *JobsHandler) Replay(c *gin.Context) {
	queue := c.Param("queue")
	n, err := h.jobs.Replay(c.Request.Context(), queue, intQuery(c, "limit", 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReplayResponse{Queue: queue, Replayed: n})
}
