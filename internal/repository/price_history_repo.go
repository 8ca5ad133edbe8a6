package repository

import (
	"context"

	"github.com/brehash/kscinventory-sub002/internal/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

type PriceHistoryRepository interface {
	Create(ctx context.Context, h *model.PriceHistory) error
	ListByProduct(ctx context.Context, productID string, limit int) ([]model.PriceHistory, error)
}

type priceHistoryRepo struct{ client *firestore.Client }

func NewPriceHistoryRepository(client *firestore.Client) PriceHistoryRepository {
	return &priceHistoryRepo{client: client}
}

func (r *priceHistoryRepo) col(productID string) *firestore.CollectionRef {
	return r.client.Collection(model.CollectionProducts).Doc(productID).Collection(model.CollectionPriceHistory)
}

func (r *priceHistoryRepo) Create(ctx context.Context, h *model.PriceHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	_, err := r.col(h.ProductID).Doc(h.ID).Create(ctx, h)
	return err
}

// ListByProduct returns the newest entries first. The subcollection is
// append-only, so changedAt order is insertion order.
func (r *priceHistoryRepo) ListByProduct(ctx context.Context, productID string, limit int) ([]model.PriceHistory, error) {
	_, limit = normalizePage(1, limit, 50, 200)
	return decodeAll(
		r.col(productID).OrderBy("changedAt", firestore.Desc).Limit(limit).Documents(ctx),
		func(h *model.PriceHistory, id string) { h.ID = id },
	)
}
