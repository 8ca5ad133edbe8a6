package infra

import (
	"fmt"
	"io"
	"strings"

	"github.com/brehash/kscinventory-sub002/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// WriteOrderPDF renders an A4 packing slip / invoice for an order to w.
func WriteOrderPDF(order *model.Order, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr("Order "+order.OrderNumber), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, order.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Status: "+order.Status, "", 1, "L", false, 0, "")
	if order.PaymentMethod != "" {
		pdf.CellFormat(contentW, 5, tr("Payment: "+order.PaymentMethod), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Billing and shipping side by side
	half := contentW / 2
	y := pdf.GetY()
	addressBlock(pdf, tr, "Bill to", order.Billing, order.CustomerName, 15, y, half)
	addressBlock(pdf, tr, "Ship to", order.Shipping, order.CustomerName, 15+half, y, half)
	pdf.Ln(4)

	colName := contentW * 0.46
	colSKU := contentW * 0.18
	colQty := contentW * 0.08
	colPrice := contentW * 0.14
	colTotal := contentW * 0.14

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colName, 7, "Product", "B", 0, "L", true, 0, "")
	pdf.CellFormat(colSKU, 7, "SKU", "B", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, 7, "Qty", "B", 0, "C", true, 0, "")
	pdf.CellFormat(colPrice, 7, "Price", "B", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, 7, "Total", "B", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range order.Items {
		name := it.ProductName
		if len(name) > 48 {
			name = name[:47] + "..."
		}
		pdf.CellFormat(colName, 6, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(colSKU, 6, tr(it.SKU), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, fmt.Sprintf("%d", it.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(colPrice, 6, money(it.Price, order.Currency), "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 6, money(it.Total, order.Currency), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	labelW := contentW - colTotal
	totalLine := func(label string, v float64) {
		pdf.CellFormat(labelW, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 6, money(v, order.Currency), "", 1, "R", false, 0, "")
	}
	totalLine("Subtotal", order.Subtotal)
	if order.ShippingCost != 0 {
		totalLine("Shipping", order.ShippingCost)
	}
	if order.Discount != 0 {
		totalLine("Discount", -order.Discount)
	}
	if order.Tax != 0 {
		totalLine("Tax", order.Tax)
	}
	pdf.SetFont("Helvetica", "B", 11)
	totalLine("Total", order.Total)

	if order.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr("Notes: "+order.Notes), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render order %s: %w", order.OrderNumber, err)
	}
	return nil
}

func addressBlock(pdf *fpdf.Fpdf, tr func(string) string, title string, a model.Address, fallbackName string, x, y, w float64) {
	pdf.SetXY(x, y)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(w, 6, title, "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)

	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		name = fallbackName
	}
	lines := []string{name, a.Company, a.Address1, a.Address2,
		strings.TrimSpace(a.Postcode + " " + a.City), strings.TrimSpace(a.State + " " + a.Country), a.Email, a.Phone}
	for _, l := range lines {
		if l == "" {
			continue
		}
		pdf.CellFormat(w, 5, tr(l), "", 2, "L", false, 0, "")
	}
}

func money(v float64, currency string) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
