package repository

import (
	"context"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

type ActivityRepository interface {
	Create(ctx context.Context, a *model.ActivityLog) error
	List(ctx context.Context, filter dto.ActivityFilter) ([]model.ActivityLog, error)
}

type activityRepo struct{ client *firestore.Client }

func NewActivityRepository(client *firestore.Client) ActivityRepository {
	return &activityRepo{client: client}
}

func (r *activityRepo) Create(ctx context.Context, a *model.ActivityLog) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.client.Collection(model.CollectionActivityLogs).Doc(a.ID).Create(ctx, a)
	return err
}

func (r *activityRepo) List(ctx context.Context, filter dto.ActivityFilter) ([]model.ActivityLog, error) {
	_, limit := normalizePage(1, filter.Limit, 50, 200)
	q := r.client.Collection(model.CollectionActivityLogs).Query
	if filter.EntityType != "" {
		q = q.Where("entityType", "==", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entityId", "==", filter.EntityID)
	}
	if filter.UserID != "" {
		q = q.Where("userId", "==", filter.UserID)
	}
	return decodeAll(
		q.OrderBy("timestamp", firestore.Desc).Limit(limit).Documents(ctx),
		func(a *model.ActivityLog, id string) { a.ID = id },
	)
}
