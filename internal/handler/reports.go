package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/apierror"
	"github.com/brehash/kscinventory-sub002/internal/middleware"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

const maxCSVUpload = 10 << 20

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// ExportCSV streams every product as CSV, using lookup names rather than ids.
func (h *ReportsHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.ExportProductsCSV(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="products-%s.csv"`, time.Now().Format("20060102")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ImportCSV godoc
// @Summary      Import products from CSV
// @Description  Upserts by barcode. Rows with errors are reported and skipped; the rest are applied.
// @Tags         products
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Param        file  formData  file  true  "CSV file with a header row"
// @Success      200   {object}  dto.CSVImportResponse
// @Failure      400   {object}  apierror.APIError
// @Router       /v1/products/import [post]
func (h *ReportsHandler) ImportCSV(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidInput, "Missing multipart field \"file\""))
		return
	}
	if fh.Size > maxCSVUpload {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.WithCode(apierror.CodeInvalidInput, "CSV file is larger than 10 MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidInput, "Could not read upload"))
		return
	}
	defer f.Close()

	resp, err := h.svc.ImportProductsCSV(c.Request.Context(), middleware.GetActor(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStockDigest sends the digest now instead of waiting for the schedule.
func (h *ReportsHandler) LowStockDigest(c *gin.Context) {
	n, err := h.svc.LowStockDigest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"products": n, "queued": n > 0})
}
