package dto

// ProductCSVRow is one line of the product import/export file.
type ProductCSVRow struct {
	Barcode       string `csv:"barcode"`
	Name          string `csv:"name"`
	Description   string `csv:"description"`
	Category      string `csv:"category"`
	Type          string `csv:"type"`
	Location      string `csv:"location"`
	Provider      string `csv:"provider"`
	Quantity      string `csv:"quantity"`
	MinQuantity   string `csv:"min_quantity"`
	Cost          string `csv:"cost"`
	Price         string `csv:"price"`
	VATPercentage string `csv:"vat_percentage"`
	WooCommerceID string `csv:"woocommerce_id"`
}

type CSVImportResponse struct {
	TotalRows int           `json:"total_rows"`
	Processed int           `json:"processed"`
	Errors    int           `json:"errors"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	ErrorRows []CSVErrorRow `json:"error_rows"`
}

type CSVErrorRow struct {
	Row       int    `json:"row"`
	Barcode   string `json:"barcode,omitempty"`
	Name      string `json:"name,omitempty"`
	ErrorCode string `json:"error_code"` // BARCODE_MISSING|NAME_MISSING|PRICE_NOT_NUMBER|PRICE_NEGATIVE|QUANTITY_NEGATIVE|ROW_FORMAT
	Reason    string `json:"reason"`
}
