package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// CatalogRepository is CRUD over the four lookup collections. The kind
// argument selects the collection.
type CatalogRepository interface {
	Create(ctx context.Context, kind model.CatalogKind, e *model.CatalogEntry) error
	List(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error)
	FindByID(ctx context.Context, kind model.CatalogKind, id string) (*model.CatalogEntry, error)
	FindByName(ctx context.Context, kind model.CatalogKind, name string) (*model.CatalogEntry, error)
	Update(ctx context.Context, kind model.CatalogKind, e *model.CatalogEntry) error
	Delete(ctx context.Context, kind model.CatalogKind, id string) error
}

type catalogRepo struct{ client *firestore.Client }

func NewCatalogRepository(client *firestore.Client) CatalogRepository {
	return &catalogRepo{client: client}
}

func setCatalogID(e *model.CatalogEntry, id string) { e.ID = id }

func (r *catalogRepo) Create(ctx context.Context, kind model.CatalogKind, e *model.CatalogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	_, err := r.client.Collection(string(kind)).Doc(e.ID).Create(ctx, e)
	return err
}

func (r *catalogRepo) List(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error) {
	list, err := decodeAll(r.client.Collection(string(kind)).Documents(ctx), setCatalogID)
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
	return list, nil
}

func (r *catalogRepo) FindByID(ctx context.Context, kind model.CatalogKind, id string) (*model.CatalogEntry, error) {
	snap, err := r.client.Collection(string(kind)).Doc(id).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}
	var e model.CatalogEntry
	if err := snap.DataTo(&e); err != nil {
		return nil, err
	}
	e.ID = snap.Ref.ID
	return &e, nil
}

// FindByName matches case-insensitively. Lookup collections hold tens of
// entries, so this scans the collection instead of keeping a lowercase copy.
func (r *catalogRepo) FindByName(ctx context.Context, kind model.CatalogKind, name string) (*model.CatalogEntry, error) {
	list, err := r.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if strings.EqualFold(strings.TrimSpace(list[i].Name), strings.TrimSpace(name)) {
			return &list[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *catalogRepo) Update(ctx context.Context, kind model.CatalogKind, e *model.CatalogEntry) error {
	e.UpdatedAt = time.Now().UTC()
	_, err := r.client.Collection(string(kind)).Doc(e.ID).Set(ctx, e)
	return err
}

func (r *catalogRepo) Delete(ctx context.Context, kind model.CatalogKind, id string) error {
	_, err := r.client.Collection(string(kind)).Doc(id).Delete(ctx, firestore.Exists)
	return translate(err)
}
