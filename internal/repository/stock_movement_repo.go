package repository

import (
	"context"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"

	"cloud.google.com/go/firestore"
)

// StockMovementRepository reads the movements written by
// ProductRepository.AdjustQuantities.
type StockMovementRepository interface {
	List(ctx context.Context, filter dto.StockMovementFilter) ([]model.StockMovement, error)
}

type stockMovementRepo struct{ client *firestore.Client }

func NewStockMovementRepository(client *firestore.Client) StockMovementRepository {
	return &stockMovementRepo{client: client}
}

func (r *stockMovementRepo) List(ctx context.Context, filter dto.StockMovementFilter) ([]model.StockMovement, error) {
	_, limit := normalizePage(1, filter.Limit, 100, 500)
	q := r.client.Collection(model.CollectionStockMovements).Query
	if filter.ProductID != "" {
		q = q.Where("productId", "==", filter.ProductID)
	}
	return decodeAll(
		q.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx),
		func(m *model.StockMovement, id string) { m.ID = id },
	)
}
