package service

import (
	"context"
	"testing"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	names := catalogNames{
		model.KindCategory: {"c-kitchen": "Kitchen", "c-garden": "Garden"},
		model.KindLocation: {"l-a": "Shelf A"},
	}
	products := []model.Product{
		{ID: "1", Name: "Mug", CategoryID: "c-kitchen", LocationID: "l-a", Quantity: 10, MinQuantity: 2, Cost: 5, Price: 11.9, VATPercentage: 19},
		{ID: "2", Name: "Plate", CategoryID: "c-kitchen", Quantity: 1, MinQuantity: 2, Cost: 10, Price: 20},
		{ID: "3", Name: "Hose", CategoryID: "c-garden", LocationID: "l-gone", Quantity: -2, Cost: 30, Price: 50},
	}
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	orders := []model.Order{
		{Status: model.OrderCompleted, Total: 100, CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Status: model.OrderProcessing, Total: 50, CreatedAt: time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)},
		{Status: model.OrderPending, Total: 70, CreatedAt: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
		{Status: model.OrderCancelled, Total: 999, CreatedAt: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)},
	}

	st := computeStats(products, orders, names, now)

	assert.Equal(t, 3, st.TotalProducts)
	assert.Equal(t, 9, st.TotalUnits)
	// oversold hose contributes nothing to value
	assert.True(t, d("60").Equal(st.InventoryCostValue), st.InventoryCostValue.String())
	assert.True(t, d("139").Equal(st.InventoryRetailValue), st.InventoryRetailValue.String())
	assert.True(t, d("79").Equal(st.PotentialProfit))
	assert.Equal(t, 1, st.LowStockCount)
	assert.Equal(t, 1, st.OutOfStockCount)

	require.Len(t, st.CategoryBreakdown, 2)
	assert.Equal(t, "Kitchen", st.CategoryBreakdown[0].Name)
	assert.True(t, d("100").Equal(st.CategoryBreakdown[0].Percentage))
	assert.Equal(t, "Garden", st.CategoryBreakdown[1].Name)

	locs := map[string]string{}
	for _, b := range st.LocationBreakdown {
		locs[b.ID] = b.Name
	}
	assert.Equal(t, "Shelf A", locs["l-a"])
	assert.Equal(t, "Unassigned", locs[""])
	assert.Equal(t, "Unknown", locs["l-gone"])

	assert.Equal(t, 4, st.TotalOrders)
	assert.Equal(t, 1, st.PendingOrders)
	assert.Equal(t, 1, st.OrdersByStatus[model.OrderCancelled])
	assert.True(t, d("150").Equal(st.Revenue))
	assert.True(t, d("100").Equal(st.RevenueThisMonth))
}

func TestComputeStats_Empty(t *testing.T) {
	st := computeStats(nil, nil, catalogNames{}, time.Now())
	assert.Zero(t, st.TotalProducts)
	assert.True(t, st.AverageMarginPct.IsZero())
	assert.Empty(t, st.CategoryBreakdown)
	assert.NotNil(t, st.OrdersByStatus)
}

func TestDashboardStats_WithoutCache(t *testing.T) {
	activity := &stubActivityRepo{}
	act := NewActivityService(activity)
	act.Record(context.Background(), testActor, model.ActionCreate, model.EntityProduct, "1", "Mug", "")

	svc := NewDashboardService(DashboardServiceDeps{
		Products: newStubProductRepo(model.Product{ID: "1", Name: "Mug", Quantity: 4, Price: 10}),
		Orders:   newStubOrderRepo(nil),
		Catalog:  newStubCatalogRepo(),
		Activity: act,
		TTL:      time.Minute,
	})

	st, err := svc.Stats(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, st.Cached)
	assert.Equal(t, 4, st.TotalUnits)
	require.Len(t, st.RecentActivity, 1)
	assert.Equal(t, "Mug", st.RecentActivity[0].EntityName)
}
