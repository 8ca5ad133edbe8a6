package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brehash/kscinventory-sub002/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	svc        ReportService
	products   *stubProductRepo
	catalog    *stubCatalogRepo
	history    *stubHistoryRepo
	dispatcher *stubDispatcher
}

func newReportFixture(alertEmail string, products ...model.Product) *reportFixture {
	f := &reportFixture{
		products:   newStubProductRepo(products...),
		catalog:    newStubCatalogRepo(),
		history:    &stubHistoryRepo{},
		dispatcher: &stubDispatcher{},
	}
	f.svc = NewReportService(ReportServiceDeps{
		Products:   f.products,
		Catalog:    f.catalog,
		History:    f.history,
		Activity:   NewActivityService(&stubActivityRepo{}),
		Dispatcher: f.dispatcher,
		AlertEmail: alertEmail,
		PushToWoo:  true,
	})
	return f
}

const importHeader = "barcode,name,description,category,type,location,provider,quantity,min_quantity,cost,price,vat_percentage,woocommerce_id\n"

func TestImportProductsCSV(t *testing.T) {
	f := newReportFixture("", model.Product{
		ID: "p1", Name: "Mug", Barcode: "MUG-1", Quantity: 4, Cost: 5, Price: 10, WooCommerceID: int64Ptr(11),
	})
	f.catalog.add(model.KindCategory, "c1", "Kitchen")

	csv := importHeader +
		"MUG-1,,,,,,,7,,6,,,\n" + // update: quantity and cost
		"PLT-1,Plate,,kitchen,,Shelf B,,3,1,\"4,50\",9,19,\n" + // create, reuse category, new location
		",No barcode,,,,,,1,,,,,\n" +
		"X-1,,,,,,,1,,,,,\n" + // new product without a name
		"X-2,Bad price,,,,,,1,,,abc,,\n" +
		"X-3,Neg price,,,,,,1,,,-1,,\n" +
		"X-4,Neg qty,,,,,,-1,,,,,\n" +
		"X-5,Bad qty,,,,,,1.5,,,,,\n"

	resp, err := f.svc.ImportProductsCSV(context.Background(), testActor, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 8, resp.TotalRows)
	assert.Equal(t, 2, resp.Processed)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 6, resp.Errors)

	codes := map[int]string{}
	for _, e := range resp.ErrorRows {
		codes[e.Row] = e.ErrorCode
	}
	assert.Equal(t, map[int]string{
		4: CSVBarcodeMissing,
		5: CSVNameMissing,
		6: CSVPriceNotNumber,
		7: CSVPriceNegative,
		8: CSVQuantityNegative,
		9: CSVRowFormat,
	}, codes)

	// existing product: quantity through the ledger, price change recorded
	assert.Equal(t, 7, f.products.qty("p1"))
	mug, err := f.products.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", mug.Name)
	assert.Equal(t, 6.0, mug.Cost)
	assert.Equal(t, 10.0, mug.Price)
	require.Len(t, f.products.movements, 1)
	assert.Equal(t, model.MovementCSVImport, f.products.movements[0].Reason)
	assert.Equal(t, []string{"p1"}, f.dispatcher.stockPushes)

	plate, err := f.products.FindByBarcode(context.Background(), "PLT-1")
	require.NoError(t, err)
	assert.Equal(t, "c1", plate.CategoryID)
	assert.NotEmpty(t, plate.LocationID)
	assert.Equal(t, 3, plate.Quantity)
	assert.Equal(t, 4.5, plate.Cost)
	loc, err := f.catalog.FindByID(context.Background(), model.KindLocation, plate.LocationID)
	require.NoError(t, err)
	assert.Equal(t, "Shelf B", loc.Name)

	require.Len(t, f.history.entries, 2)
	for _, h := range f.history.entries {
		assert.Equal(t, model.PriceReasonCSVImport, h.Reason)
	}
}

func TestImportProductsCSV_AppliesRequestRules(t *testing.T) {
	f := newReportFixture("", model.Product{ID: "p1", Name: "Mug", Barcode: "MUG-1", Quantity: 4, VATPercentage: 19})

	csv := importHeader +
		"NEW-1,Vase,,,,,,1,,,10,120,\n" + // VAT over 100
		"NEW-2,V,,,,,,1,,,10,19,\n" + // name too short
		"AB,Vase,,,,,,1,,,10,19,\n" + // barcode too short
		"NEW-3,Vase,,K,,,,1,,,10,19,\n" + // category name too short
		"MUG-1,,,,,,,9,,,,150,\n" // update with VAT over 100

	resp, err := f.svc.ImportProductsCSV(context.Background(), testActor, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Zero(t, resp.Processed)
	require.Len(t, resp.ErrorRows, 5)
	for _, row := range resp.ErrorRows {
		assert.Equal(t, CSVInvalidField, row.ErrorCode, "row %d: %s", row.Row, row.Reason)
	}
	assert.Equal(t, "vat_percentage fails max=100", resp.ErrorRows[0].Reason)
	assert.Equal(t, "name fails min=2", resp.ErrorRows[1].Reason)
	assert.Equal(t, "barcode fails min=3", resp.ErrorRows[2].Reason)

	categories, err := f.catalog.List(context.Background(), model.KindCategory)
	require.NoError(t, err)
	assert.Empty(t, categories)
	mug, err := f.products.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 19.0, mug.VATPercentage)
	assert.Equal(t, 4, mug.Quantity)
}

func TestImportProductsCSV_FailedSaveLeavesProductUntouched(t *testing.T) {
	f := newReportFixture("", model.Product{ID: "p1", Name: "Mug", Barcode: "MUG-1", Quantity: 4, Price: 10})
	f.products.failSave = errors.New("firestore unavailable")

	resp, err := f.svc.ImportProductsCSV(context.Background(), testActor,
		strings.NewReader(importHeader+"MUG-1,Mug Large,,,,,,9,,,12,,\n"))
	require.NoError(t, err)
	assert.Zero(t, resp.Updated)
	require.Len(t, resp.ErrorRows, 1)
	assert.Equal(t, CSVRowFormat, resp.ErrorRows[0].ErrorCode)

	mug, err := f.products.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", mug.Name)
	assert.Equal(t, 10.0, mug.Price)
	assert.Equal(t, 4, mug.Quantity)
	assert.Empty(t, f.products.movements)
	assert.Empty(t, f.history.entries)
	assert.Empty(t, f.dispatcher.stockPushes)
}

func TestExportProductsCSV(t *testing.T) {
	f := newReportFixture("", model.Product{
		ID: "p1", Name: "Mug", Barcode: "MUG-1", CategoryID: "c1", Quantity: 4, Cost: 5, Price: 11.9, VATPercentage: 19, WooCommerceID: int64Ptr(11),
	})
	f.catalog.add(model.KindCategory, "c1", "Kitchen")

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportProductsCSV(context.Background(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.TrimSpace(importHeader), lines[0])
	assert.Equal(t, "MUG-1,Mug,,Kitchen,,,,4,0,5.00,11.90,19,11", lines[1])
}

func TestExportThenImportIsStable(t *testing.T) {
	f := newReportFixture("", model.Product{ID: "p1", Name: "Mug", Barcode: "MUG-1", Quantity: 4, Cost: 5, Price: 10})

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportProductsCSV(context.Background(), &buf))
	resp, err := f.svc.ImportProductsCSV(context.Background(), testActor, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Updated)
	assert.Empty(t, f.products.movements)
	assert.Empty(t, f.history.entries)
}

func TestLowStockDigest(t *testing.T) {
	f := newReportFixture("ops@example.com",
		model.Product{ID: "1", Name: "Mug", Barcode: "MUG-1", Quantity: 1, MinQuantity: 3},
		model.Product{ID: "2", Name: "Cup", Barcode: "CUP-1", Quantity: 0, MinQuantity: 3},
		model.Product{ID: "3", Name: "Plate", Barcode: "PLT-1", Quantity: 9, MinQuantity: 3},
	)

	n, err := f.svc.LowStockDigest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, f.dispatcher.emails, 1)
	mail := f.dispatcher.emails[0]
	assert.True(t, strings.HasPrefix(mail, "ops@example.com|Low stock: 1 out, 1 low|"))
	assert.Contains(t, mail, "CUP-1")
	assert.NotContains(t, mail, "PLT-1")
}

func TestLowStockDigest_NothingLow(t *testing.T) {
	f := newReportFixture("ops@example.com", model.Product{ID: "1", Name: "Mug", Quantity: 10, MinQuantity: 1})
	n, err := f.svc.LowStockDigest(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.dispatcher.emails)

	_, err = newReportFixture("").svc.LowStockDigest(context.Background())
	assert.ErrorIs(t, err, ErrInvalidInput)
}
