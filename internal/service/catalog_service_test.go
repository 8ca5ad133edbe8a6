package service

import (
	"context"
	"testing"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFixture(products ...model.Product) (CatalogService, *stubCatalogRepo) {
	cat := newStubCatalogRepo()
	svc := NewCatalogService(cat, newStubProductRepo(products...), NewActivityService(&stubActivityRepo{}))
	return svc, cat
}

func TestCatalog_CreateRejectsDuplicateCategoryName(t *testing.T) {
	svc, cat := newCatalogFixture()
	cat.add(model.KindCategory, "c1", "Kitchen")

	_, err := svc.Create(context.Background(), testActor, model.KindCategory, dto.CreateCatalogRequest{Name: " kitchen "})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCatalog_LocationsMayShareNames(t *testing.T) {
	svc, cat := newCatalogFixture()
	cat.add(model.KindLocation, "l1", "Shelf A")

	_, err := svc.Create(context.Background(), testActor, model.KindLocation, dto.CreateCatalogRequest{Name: "Shelf A"})
	assert.NoError(t, err)
}

func TestCatalog_ProviderKeepsContactFields(t *testing.T) {
	svc, _ := newCatalogFixture()
	resp, err := svc.Create(context.Background(), testActor, model.KindProvider, dto.CreateCatalogRequest{
		Name: "Acme", Email: "sales@acme.test", Phone: "0700",
	})
	require.NoError(t, err)
	assert.Equal(t, "sales@acme.test", resp.Email)

	name := "Acme Ltd"
	updated, err := svc.Update(context.Background(), testActor, model.KindProvider, resp.ID, dto.UpdateCatalogRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", updated.Name)
	assert.Equal(t, "0700", updated.Phone)
}

func TestCatalog_DeleteRefusedWhileReferenced(t *testing.T) {
	svc, cat := newCatalogFixture(model.Product{ID: "p1", Name: "Mug", CategoryID: "c1"})
	cat.add(model.KindCategory, "c1", "Kitchen")
	cat.add(model.KindCategory, "c2", "Garden")

	err := svc.Delete(context.Background(), testActor, model.KindCategory, "c1")
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, svc.Delete(context.Background(), testActor, model.KindCategory, "c2"))
	err = svc.Delete(context.Background(), testActor, model.KindCategory, "c2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_ListWithCounts(t *testing.T) {
	svc, cat := newCatalogFixture(
		model.Product{ID: "p1", Name: "Mug", CategoryID: "c1"},
		model.Product{ID: "p2", Name: "Cup", CategoryID: "c1"},
	)
	cat.add(model.KindCategory, "c1", "Kitchen")
	cat.add(model.KindCategory, "c2", "Garden")

	list, err := svc.List(context.Background(), model.KindCategory, true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	counts := map[string]int64{}
	for _, c := range list {
		require.NotNil(t, c.ProductCount)
		counts[c.ID] = *c.ProductCount
	}
	assert.Equal(t, int64(2), counts["c1"])
	assert.Equal(t, int64(0), counts["c2"])
}
