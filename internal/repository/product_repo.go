package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// StockAdjustment is one quantity change applied by AdjustQuantities.
type StockAdjustment struct {
	ProductID     string
	Delta         int
	Reason        string
	ReferenceID   string
	UserID        string
	AllowNegative bool
	// IgnoreMissing skips the adjustment when the product no longer exists
	// instead of failing the whole batch.
	IgnoreMissing bool
}

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the Firestore implementation,
// so they can be unit tested with in-memory stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	CountByField(ctx context.Context, field, value string) (int64, error)
	SetWooID(ctx context.Context, id string, wooID int64) error

	// AdjustQuantities applies every adjustment atomically and records a
	// stock movement for each. It returns the products after the change.
	AdjustQuantities(ctx context.Context, adjustments []StockAdjustment) ([]model.Product, error)

	// SaveWithQuantity writes p and sets its quantity to target in one
	// transaction. The difference from the stored quantity is recorded as a
	// movement; a nil target keeps the stored quantity. It reports whether
	// the quantity changed.
	SaveWithQuantity(ctx context.Context, p *model.Product, target *int, reason, userID string) (bool, error)
}

type productRepo struct{ client *firestore.Client }

func NewProductRepository(client *firestore.Client) ProductRepository {
	return &productRepo{client: client}
}

func (r *productRepo) col() *firestore.CollectionRef {
	return r.client.Collection(model.CollectionProducts)
}

func setProductID(p *model.Product, id string) { p.ID = id }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.col().Doc(p.ID).Create(ctx, p)
	return err
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}
	var p model.Product
	if err := snap.DataTo(&p); err != nil {
		return nil, err
	}
	p.ID = snap.Ref.ID
	return &p, nil
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	list, err := decodeAll(r.col().Where("barcode", "==", barcode).Limit(1).Documents(ctx), setProductID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	page, limit := normalizePage(filter.Page, filter.Limit, 20, 100)

	q := r.col().Query
	if filter.CategoryID != "" {
		q = q.Where("categoryId", "==", filter.CategoryID)
	}
	if filter.TypeID != "" {
		q = q.Where("typeId", "==", filter.TypeID)
	}
	if filter.LocationID != "" {
		q = q.Where("locationId", "==", filter.LocationID)
	}
	if filter.ProviderID != "" {
		q = q.Where("providerId", "==", filter.ProviderID)
	}
	if filter.Barcode != "" {
		q = q.Where("barcode", "==", filter.Barcode)
	}
	if filter.Search != "" {
		// Prefix match; Firestore has no substring search.
		q = q.Where("name", ">=", filter.Search).Where("name", "<=", filter.Search+"\uf8ff")
	}
	q = q.OrderBy("name", firestore.Asc)

	// quantity <= minQuantity compares two fields, which Firestore cannot
	// express, so stock filters are applied in memory.
	if filter.Stock == model.StockLow || filter.Stock == model.StockOut {
		all, err := decodeAll(q.Documents(ctx), setProductID)
		if err != nil {
			return nil, 0, err
		}
		matched := all[:0]
		for _, p := range all {
			st := p.StockStatus()
			if st == filter.Stock || (filter.Stock == model.StockLow && st == model.StockOut) {
				matched = append(matched, p)
			}
		}
		return paginate(matched, page, limit), int64(len(matched)), nil
	}

	total, err := countQuery(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	list, err := decodeAll(q.Offset((page-1)*limit).Limit(limit).Documents(ctx), setProductID)
	return list, total, err
}

func (r *productRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	list, err := decodeAll(r.col().Documents(ctx), setProductID)
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := r.col().Doc(p.ID).Set(ctx, p)
	return err
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx, firestore.Exists)
	return translate(err)
}

func (r *productRepo) CountByField(ctx context.Context, field, value string) (int64, error) {
	return countQuery(ctx, r.col().Where(field, "==", value))
}

func (r *productRepo) SetWooID(ctx context.Context, id string, wooID int64) error {
	now := time.Now().UTC()
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "wooCommerceId", Value: wooID},
		{Path: "lastWooSyncAt", Value: now},
		{Path: "updatedAt", Value: now},
	})
	return translate(err)
}

func (r *productRepo) AdjustQuantities(ctx context.Context, adjustments []StockAdjustment) ([]model.Product, error) {
	if len(adjustments) == 0 {
		return nil, nil
	}
	var result []model.Product
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		plan, err := planStock(tx, r.client, adjustments, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := plan.write(tx, r.client); err != nil {
			return err
		}
		result = plan.result()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepo) SaveWithQuantity(ctx context.Context, p *model.Product, target *int, reason, userID string) (bool, error) {
	ref := r.col().Doc(p.ID)
	var moved bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		moved = false
		snap, err := tx.Get(ref)
		if err != nil {
			return translate(err)
		}
		var stored model.Product
		if err := snap.DataTo(&stored); err != nil {
			return err
		}

		now := time.Now().UTC()
		p.Quantity = stored.Quantity
		p.UpdatedAt = now
		if target != nil && *target != stored.Quantity {
			moved = true
			p.Quantity = *target
			if err := tx.Create(r.client.Collection(model.CollectionStockMovements).Doc(uuid.NewString()), model.StockMovement{
				ProductID:      p.ID,
				ProductName:    p.Name,
				Delta:          *target - stored.Quantity,
				QuantityBefore: stored.Quantity,
				QuantityAfter:  *target,
				Reason:         reason,
				UserID:         userID,
				CreatedAt:      now,
			}); err != nil {
				return err
			}
		}
		return tx.Set(ref, p)
	})
	return moved, err
}
