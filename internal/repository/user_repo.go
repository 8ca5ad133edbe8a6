package repository

import (
	"context"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/model"

	"cloud.google.com/go/firestore"
)

type UserRepository interface {
	Upsert(ctx context.Context, u *model.User) error
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type userRepo struct{ client *firestore.Client }

func NewUserRepository(client *firestore.Client) UserRepository {
	return &userRepo{client: client}
}

func (r *userRepo) Upsert(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := r.client.Collection(model.CollectionUsers).Doc(u.UID).Set(ctx, u)
	return err
}

func (r *userRepo) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	snap, err := r.client.Collection(model.CollectionUsers).Doc(uid).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}
	var u model.User
	if err := snap.DataTo(&u); err != nil {
		return nil, err
	}
	u.UID = snap.Ref.ID
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	return decodeAll(
		r.client.Collection(model.CollectionUsers).OrderBy("email", firestore.Asc).Documents(ctx),
		func(u *model.User, id string) { u.UID = id },
	)
}
