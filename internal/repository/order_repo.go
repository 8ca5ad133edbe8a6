package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByWooID(ctx context.Context, wooID int64) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	Update(ctx context.Context, o *model.Order) error
	Delete(ctx context.Context, id string) error

	// CreateWithStock writes a new order and applies its stock adjustments
	// in one transaction. A taken id yields ErrAlreadyExists and no stock
	// change.
	CreateWithStock(ctx context.Context, o *model.Order, adjustments []StockAdjustment) ([]model.Product, error)

	// Transition reads the order inside a transaction and passes it to
	// mutate, which edits it and returns the stock adjustments that go with
	// the edit. The order, the products and their movements are written
	// together; an error from mutate aborts without writing. mutate may run
	// more than once when the transaction is retried.
	Transition(ctx context.Context, id string, mutate func(o *model.Order) ([]StockAdjustment, error)) (*model.Order, []model.Product, error)
}

type orderRepo struct{ client *firestore.Client }

func NewOrderRepository(client *firestore.Client) OrderRepository {
	return &orderRepo{client: client}
}

func (r *orderRepo) col() *firestore.CollectionRef {
	return r.client.Collection(model.CollectionOrders)
}

func setOrderID(o *model.Order, id string) { o.ID = id }

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	_, err := r.col().Doc(o.ID).Create(ctx, o)
	return translate(err)
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}
	var o model.Order
	if err := snap.DataTo(&o); err != nil {
		return nil, err
	}
	o.ID = snap.Ref.ID
	return &o, nil
}

func (r *orderRepo) FindByWooID(ctx context.Context, wooID int64) (*model.Order, error) {
	list, err := decodeAll(r.col().Where("wooCommerceId", "==", wooID).Limit(1).Documents(ctx), setOrderID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	page, limit := normalizePage(filter.Page, filter.Limit, 20, 100)

	q := r.col().Query
	if filter.Status != "" {
		q = q.Where("status", "==", filter.Status)
	}
	if filter.Source != "" {
		q = q.Where("source", "==", filter.Source)
	}
	if filter.Search != "" {
		// Prefix search on a field forces ordering by that field, so a
		// search ignores the date range.
		field, term := orderSearch(filter.Search)
		q = q.Where(field, ">=", term).
			Where(field, "<=", term+"\uf8ff").
			OrderBy(field, firestore.Asc)
	} else {
		if filter.From != "" {
			from, err := time.Parse("2006-01-02", filter.From)
			if err != nil {
				return nil, 0, fmt.Errorf("from: %w", err)
			}
			q = q.Where("createdAt", ">=", from)
		}
		if filter.To != "" {
			to, err := time.Parse("2006-01-02", filter.To)
			if err != nil {
				return nil, 0, fmt.Errorf("to: %w", err)
			}
			q = q.Where("createdAt", "<", to.AddDate(0, 0, 1))
		}
		q = q.OrderBy("createdAt", firestore.Desc)
	}

	total, err := countQuery(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	list, err := decodeAll(q.Offset((page-1)*limit).Limit(limit).Documents(ctx), setOrderID)
	return list, total, err
}

func (r *orderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	return decodeAll(r.col().OrderBy("createdAt", firestore.Desc).Documents(ctx), setOrderID)
}

func (r *orderRepo) Update(ctx context.Context, o *model.Order) error {
	o.UpdatedAt = time.Now().UTC()
	_, err := r.col().Doc(o.ID).Set(ctx, o)
	return err
}

func (r *orderRepo) CreateWithStock(ctx context.Context, o *model.Order, adjustments []StockAdjustment) ([]model.Product, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	var result []model.Product
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		plan, err := planStock(tx, r.client, adjustments, now)
		if err != nil {
			return err
		}
		if err := plan.write(tx, r.client); err != nil {
			return err
		}
		result = plan.result()
		return tx.Create(r.col().Doc(o.ID), o)
	})
	if err != nil {
		return nil, translate(err)
	}
	return result, nil
}

func (r *orderRepo) Transition(ctx context.Context, id string, mutate func(o *model.Order) ([]StockAdjustment, error)) (*model.Order, []model.Product, error) {
	ref := r.col().Doc(id)
	var (
		order  *model.Order
		result []model.Product
	)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return translate(err)
		}
		var o model.Order
		if err := snap.DataTo(&o); err != nil {
			return err
		}
		o.ID = id

		adjustments, err := mutate(&o)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		plan, err := planStock(tx, r.client, adjustments, now)
		if err != nil {
			return err
		}
		if err := plan.write(tx, r.client); err != nil {
			return err
		}
		o.UpdatedAt = now
		if err := tx.Set(ref, &o); err != nil {
			return err
		}
		order, result = &o, plan.result()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, result, nil
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx, firestore.Exists)
	return translate(err)
}

// orderSearch picks the field a search term is matched against. Local order
// numbers are stored with an upper case ORD- prefix and a lower case hex tail.
func orderSearch(term string) (field, value string) {
	if !looksLikeOrderNumber(term) {
		return "customerName", term
	}
	if strings.HasPrefix(strings.ToUpper(term), "ORD-") {
		term = "ORD-" + strings.ToLower(term[4:])
	}
	return "orderNumber", term
}

// looksLikeOrderNumber matches local (ORD-...) and WooCommerce (numeric) numbers.
func looksLikeOrderNumber(s string) bool {
	if strings.HasPrefix(strings.ToUpper(s), "ORD-") {
		return true
	}
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
