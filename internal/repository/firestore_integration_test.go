//go:build integration

package repository

// Exercises the Firestore repositories against the emulator.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const emulatorImage = "gcr.io/google.com/cloudsdktool/google-cloud-cli:emulators"

// startEmulator runs one emulator for the package; each test gets its own
// project id so data never leaks between tests.
func startEmulator(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        emulatorImage,
			ExposedPorts: []string{"8080/tcp"},
			Cmd: []string{"gcloud", "beta", "emulators", "firestore", "start",
				"--host-port=0.0.0.0:8080"},
			WaitingFor: wait.ForLog("Dev App Server is now running").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	return host
}

func newClient(t *testing.T, host string) *firestore.Client {
	t.Helper()
	t.Setenv("FIRESTORE_EMULATOR_HOST", host)
	client, err := firestore.NewClient(context.Background(), "test-"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestFirestoreRepositories(t *testing.T) {
	host := startEmulator(t)

	t.Run("product crud and barcode lookup", func(t *testing.T) {
		client := newClient(t, host)
		ctx := context.Background()
		repo := NewProductRepository(client)

		p := &model.Product{Name: "Mug", Barcode: "MUG-1", CategoryID: "cat-1", Quantity: 4, MinQuantity: 2, Price: 11.9}
		require.NoError(t, repo.Create(ctx, p))
		require.NotEmpty(t, p.ID)

		got, err := repo.FindByBarcode(ctx, "MUG-1")
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, 11.9, got.Price)

		n, err := repo.CountByField(ctx, "categoryId", "cat-1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		require.NoError(t, repo.SetWooID(ctx, p.ID, 501))
		got, err = repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, got.IsLinkedToWoo())
		assert.NotNil(t, got.LastWooSyncAt)

		require.NoError(t, repo.Delete(ctx, p.ID))
		_, err = repo.FindByID(ctx, p.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrNotFound)
	})

	t.Run("adjust quantities is all or nothing", func(t *testing.T) {
		client := newClient(t, host)
		ctx := context.Background()
		repo := NewProductRepository(client)
		movements := NewStockMovementRepository(client)

		a := &model.Product{Name: "A", Barcode: "A", Quantity: 5}
		b := &model.Product{Name: "B", Barcode: "B", Quantity: 1}
		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))

		_, err := repo.AdjustQuantities(ctx, []StockAdjustment{
			{ProductID: a.ID, Delta: -2, Reason: "order"},
			{ProductID: b.ID, Delta: -3, Reason: "order"},
		})
		assert.ErrorIs(t, err, ErrNegativeStock)

		got, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.Quantity, "failed batch must not touch any product")

		updated, err := repo.AdjustQuantities(ctx, []StockAdjustment{
			{ProductID: a.ID, Delta: -2, Reason: "order", ReferenceID: "o1"},
			{ProductID: a.ID, Delta: -1, Reason: "order", ReferenceID: "o1"},
			{ProductID: b.ID, Delta: -3, Reason: "order", AllowNegative: true},
			{ProductID: "ghost", Delta: -1, IgnoreMissing: true},
		})
		require.NoError(t, err)
		require.Len(t, updated, 2)
		assert.Equal(t, 2, updated[0].Quantity)
		assert.Equal(t, -2, updated[1].Quantity)

		list, err := movements.List(ctx, dto.StockMovementFilter{ProductID: a.ID, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("low stock filter is applied in memory", func(t *testing.T) {
		client := newClient(t, host)
		ctx := context.Background()
		repo := NewProductRepository(client)

		for i, q := range []int{0, 2, 10} {
			require.NoError(t, repo.Create(ctx, &model.Product{
				Name: fmt.Sprintf("P%d", i), Barcode: fmt.Sprintf("B%d", i), Quantity: q, MinQuantity: 3,
			}))
		}
		low, total, err := repo.List(ctx, dto.ProductFilter{Stock: model.StockLow})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, low, 2)

		out, total, err := repo.List(ctx, dto.ProductFilter{Stock: model.StockOut})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "P0", out[0].Name)
	})

	t.Run("orders by woo id and search", func(t *testing.T) {
		client := newClient(t, host)
		ctx := context.Background()
		repo := NewOrderRepository(client)

		woo := int64(77)
		require.NoError(t, repo.Create(ctx, &model.Order{OrderNumber: "1077", CustomerName: "Ana", Source: model.SourceWooCommerce, WooCommerceID: &woo, Status: "processing"}))
		require.NoError(t, repo.Create(ctx, &model.Order{OrderNumber: "ORD-20260314-abc123", CustomerName: "Bogdan", Source: model.SourceManual, Status: "pending"}))

		got, err := repo.FindByWooID(ctx, 77)
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.CustomerName)

		_, err = repo.FindByWooID(ctx, 78)
		assert.ErrorIs(t, err, ErrNotFound)

		list, total, err := repo.List(ctx, dto.OrderFilter{Search: "ORD-2026"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "Bogdan", list[0].CustomerName)

		list, _, err = repo.List(ctx, dto.OrderFilter{Search: "An"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "1077", list[0].OrderNumber)
	})

	t.Run("order writes carry their stock change", func(t *testing.T) {
		client := newClient(t, host)
		ctx := context.Background()
		products := NewProductRepository(client)
		orders := NewOrderRepository(client)

		mug := &model.Product{Name: "Mug", Barcode: "MUG-1", Quantity: 10}
		require.NoError(t, products.Create(ctx, mug))

		order := &model.Order{ID: "woo-77", OrderNumber: "1077", Status: "processing", StockDeducted: true}
		take := []StockAdjustment{{ProductID: mug.ID, Delta: -2, Reason: "order", ReferenceID: "woo-77"}}
		adjusted, err := orders.CreateWithStock(ctx, order, take)
		require.NoError(t, err)
		require.Len(t, adjusted, 1)
		assert.Equal(t, 8, adjusted[0].Quantity)

		again := &model.Order{ID: "woo-77", OrderNumber: "1077", Status: "processing", StockDeducted: true}
		_, err = orders.CreateWithStock(ctx, again, take)
		assert.ErrorIs(t, err, ErrAlreadyExists)
		got, err := products.FindByID(ctx, mug.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Quantity, "a duplicate create must not deduct stock")

		updated, adjusted, err := orders.Transition(ctx, "woo-77", func(o *model.Order) ([]StockAdjustment, error) {
			o.Status = "cancelled"
			o.StockDeducted = false
			return []StockAdjustment{{ProductID: mug.ID, Delta: 2, Reason: "order_release", ReferenceID: o.ID}}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", updated.Status)
		assert.Equal(t, 10, adjusted[0].Quantity)

		_, _, err = orders.Transition(ctx, "woo-77", func(o *model.Order) ([]StockAdjustment, error) {
			o.Status = "pending"
			return []StockAdjustment{{ProductID: mug.ID, Delta: -50, ReferenceID: o.ID}}, nil
		})
		assert.ErrorIs(t, err, ErrNegativeStock)
		stored, err := orders.FindByID(ctx, "woo-77")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", stored.Status, "a failed stock change must not write the order")

		_, _, err = orders.Transition(ctx, "missing", func(*model.Order) ([]StockAdjustment, error) { return nil, nil })
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("csv save keeps stored quantity unless a target is set", func(t *testing.T) {
		client := newClient(t, host)
		ctx := context.Background()
		repo := NewProductRepository(client)

		p := &model.Product{Name: "Plate", Barcode: "PLT-1", Quantity: 3}
		require.NoError(t, repo.Create(ctx, p))
		_, err := repo.AdjustQuantities(ctx, []StockAdjustment{{ProductID: p.ID, Delta: 4}})
		require.NoError(t, err)

		stale := *p
		stale.Name = "Plate XL"
		moved, err := repo.SaveWithQuantity(ctx, &stale, nil, "csv_import", "u-1")
		require.NoError(t, err)
		assert.False(t, moved)
		assert.Equal(t, 7, stale.Quantity)

		target := 2
		moved, err = repo.SaveWithQuantity(ctx, &stale, &target, "csv_import", "u-1")
		require.NoError(t, err)
		assert.True(t, moved)
		got, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Plate XL", got.Name)
		assert.Equal(t, 2, got.Quantity)
	})

	t.Run("catalog and sync state", func(t *testing.T) {
		client := newClient(t, host)
		ctx := context.Background()
		catalog := NewCatalogRepository(client)
		state := NewSyncStateRepository(client)

		e := &model.CatalogEntry{Name: "Kitchen"}
		require.NoError(t, catalog.Create(ctx, model.KindCategory, e))
		got, err := catalog.FindByName(ctx, model.KindCategory, "Kitchen")
		require.NoError(t, err)
		assert.Equal(t, e.ID, got.ID)
		_, err = catalog.FindByName(ctx, model.KindLocation, "Kitchen")
		assert.ErrorIs(t, err, ErrNotFound)

		s, err := state.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, s.LastOrderSyncAt)

		at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
		require.NoError(t, state.Save(ctx, &model.SyncState{LastOrderSyncAt: &at, LastResult: model.SyncResult{New: 3}}))
		s, err = state.Get(ctx)
		require.NoError(t, err)
		assert.True(t, at.Equal(*s.LastOrderSyncAt))
		assert.Equal(t, 3, s.LastResult.New)
	})
}
