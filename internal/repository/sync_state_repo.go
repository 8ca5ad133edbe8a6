package repository

import (
	"context"
	"errors"

	"github.com/brehash/kscinventory-sub002/internal/model"

	"cloud.google.com/go/firestore"
)

type SyncStateRepository interface {
	// Get returns the zero state when nothing has been saved yet.
	Get(ctx context.Context) (*model.SyncState, error)
	Save(ctx context.Context, s *model.SyncState) error
}

type syncStateRepo struct{ client *firestore.Client }

func NewSyncStateRepository(client *firestore.Client) SyncStateRepository {
	return &syncStateRepo{client: client}
}

func (r *syncStateRepo) doc() *firestore.DocumentRef {
	return r.client.Collection(model.CollectionSettings).Doc(model.SyncStateDocID)
}

func (r *syncStateRepo) Get(ctx context.Context) (*model.SyncState, error) {
	snap, err := r.doc().Get(ctx)
	if err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			return &model.SyncState{}, nil
		}
		return nil, err
	}
	var s model.SyncState
	if err := snap.DataTo(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *syncStateRepo) Save(ctx context.Context, s *model.SyncState) error {
	_, err := r.doc().Set(ctx, s)
	return err
}
