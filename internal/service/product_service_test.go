package service

import (
	"context"
	"testing"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	svc        ProductService
	products   *stubProductRepo
	catalog    *stubCatalogRepo
	history    *stubHistoryRepo
	activity   *stubActivityRepo
	dispatcher *stubDispatcher
}

func newProductFixture(products ...model.Product) *productFixture {
	f := &productFixture{
		products:   newStubProductRepo(products...),
		catalog:    newStubCatalogRepo(),
		history:    &stubHistoryRepo{},
		activity:   &stubActivityRepo{},
		dispatcher: &stubDispatcher{},
	}
	f.catalog.add(model.KindCategory, "cat-1", "Kitchen")
	f.svc = NewProductService(ProductServiceDeps{
		Products:   f.products,
		Catalog:    f.catalog,
		History:    f.history,
		Activity:   NewActivityService(f.activity),
		Dispatcher: f.dispatcher,
		PushToWoo:  true,
	})
	return f
}

func TestProductCreate(t *testing.T) {
	f := newProductFixture()

	resp, err := f.svc.Create(context.Background(), testActor, dto.CreateProductRequest{
		Name:          "Ceramic mug",
		Barcode:       "5940000000011",
		CategoryID:    "cat-1",
		Quantity:      3,
		MinQuantity:   5,
		Cost:          d("20"),
		Price:         d("35.70"),
		VATPercentage: d("19"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Kitchen", resp.CategoryName)
	assert.Equal(t, model.StockLow, resp.StockStatus)
	assert.True(t, d("30").Equal(resp.PriceWithoutVAT))
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, model.PriceReasonCreated, f.history.entries[0].Reason)
	assert.Equal(t, []string{model.ActionCreate}, f.activity.actions())
}

func TestProductCreate_DuplicateBarcode(t *testing.T) {
	f := newProductFixture(model.Product{ID: "p1", Name: "Mug", Barcode: "123"})

	_, err := f.svc.Create(context.Background(), testActor, dto.CreateProductRequest{Name: "Other", Barcode: "123"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProductCreate_UnknownCategory(t *testing.T) {
	f := newProductFixture()

	_, err := f.svc.Create(context.Background(), testActor, dto.CreateProductRequest{
		Name: "Mug", Barcode: "123", CategoryID: "missing",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProductUpdate_RecordsPriceHistoryOnlyOnPriceChange(t *testing.T) {
	f := newProductFixture(model.Product{ID: "p1", Name: "Mug", Barcode: "123", Cost: 10, Price: 20})

	name := "Big mug"
	_, err := f.svc.Update(context.Background(), testActor, "p1", dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Empty(t, f.history.entries)

	cost := d("12.5")
	resp, err := f.svc.Update(context.Background(), testActor, "p1", dto.UpdateProductRequest{Cost: &cost})
	require.NoError(t, err)
	assert.True(t, cost.Equal(resp.Cost))
	require.Len(t, f.history.entries, 1)
	h := f.history.entries[0]
	assert.Equal(t, 10.0, h.OldCost)
	assert.Equal(t, 12.5, h.NewCost)
	assert.Equal(t, model.PriceReasonManual, h.Reason)

	hist, err := f.svc.PriceHistory(context.Background(), "p1", 10)
	require.NoError(t, err)
	require.Len(t, hist.Data, 1)
	assert.True(t, d("25").Equal(hist.Data[0].CostChangePct))
}

func TestProductUpdate_BarcodeTaken(t *testing.T) {
	f := newProductFixture(
		model.Product{ID: "p1", Name: "Mug", Barcode: "111"},
		model.Product{ID: "p2", Name: "Cup", Barcode: "222"},
	)
	bc := "222"
	_, err := f.svc.Update(context.Background(), testActor, "p1", dto.UpdateProductRequest{Barcode: &bc})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAdjustStock(t *testing.T) {
	f := newProductFixture(model.Product{ID: "p1", Name: "Mug", Barcode: "111", Quantity: 4, WooCommerceID: int64Ptr(77)})

	resp, err := f.svc.AdjustStock(context.Background(), testActor, "p1", dto.AdjustStockRequest{Delta: -3, Reason: "breakage"})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.QuantityBefore)
	assert.Equal(t, 1, resp.QuantityAfter)
	assert.Equal(t, []string{"p1"}, f.dispatcher.stockPushes)
	require.Len(t, f.products.movements, 1)
	assert.Equal(t, "breakage", f.products.movements[0].Reason)
}

func TestAdjustStock_RefusesNegativeResult(t *testing.T) {
	f := newProductFixture(model.Product{ID: "p1", Name: "Mug", Barcode: "111", Quantity: 2})

	_, err := f.svc.AdjustStock(context.Background(), testActor, "p1", dto.AdjustStockRequest{Delta: -3})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, f.products.qty("p1"))
	assert.Empty(t, f.dispatcher.stockPushes)
}

func TestAdjustStock_UnlinkedProductIsNotPushed(t *testing.T) {
	f := newProductFixture(model.Product{ID: "p1", Name: "Mug", Barcode: "111", Quantity: 2})

	_, err := f.svc.AdjustStock(context.Background(), testActor, "p1", dto.AdjustStockRequest{Delta: 5})
	require.NoError(t, err)
	assert.Empty(t, f.dispatcher.stockPushes)
}

func TestAdjustStock_Validation(t *testing.T) {
	f := newProductFixture()
	_, err := f.svc.AdjustStock(context.Background(), testActor, "p1", dto.AdjustStockRequest{Delta: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.AdjustStock(context.Background(), testActor, "missing", dto.AdjustStockRequest{Delta: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLowStock(t *testing.T) {
	f := newProductFixture(
		model.Product{ID: "p1", Name: "A", Quantity: 10, MinQuantity: 2},
		model.Product{ID: "p2", Name: "B", Quantity: 2, MinQuantity: 2},
		model.Product{ID: "p3", Name: "C", Quantity: 0, MinQuantity: 2},
	)
	list, err := f.svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.StockLow, list[0].StockStatus)
	assert.Equal(t, model.StockOut, list[1].StockStatus)
}

func TestProductDelete(t *testing.T) {
	f := newProductFixture(model.Product{ID: "p1", Name: "Mug", Barcode: "111"})
	require.NoError(t, f.svc.Delete(context.Background(), testActor, "p1"))
	_, err := f.svc.Get(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}
