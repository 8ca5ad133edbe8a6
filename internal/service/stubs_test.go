package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/infra"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/repository"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
)

// ── products ──────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	mu        sync.Mutex
	items     map[string]*model.Product
	movements []model.StockMovement
	failSave  error
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo(products ...model.Product) *stubProductRepo {
	r := &stubProductRepo{items: make(map[string]*model.Product)}
	for i := range products {
		p := products[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		r.items[p.ID] = &p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubProductRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	all, _ := r.ListAll(ctx)
	out := all[:0]
	for _, p := range all {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Search != "" && !strings.HasPrefix(p.Name, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListAll(_ context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Product, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubProductRepo) CountByField(_ context.Context, field, value string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.items {
		var v string
		switch field {
		case "categoryId":
			v = p.CategoryID
		case "typeId":
			v = p.TypeID
		case "locationId":
			v = p.LocationID
		case "providerId":
			v = p.ProviderID
		}
		if v == value {
			n++
		}
	}
	return n, nil
}

func (r *stubProductRepo) SetWooID(_ context.Context, id string, wooID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	p.WooCommerceID = &wooID
	p.LastWooSyncAt = &now
	return nil
}

// AdjustQuantities mirrors the all-or-nothing behaviour of the Firestore transaction.
func (r *stubProductRepo) AdjustQuantities(_ context.Context, adj []repository.StockAdjustment) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[string]int)
	for _, a := range adj {
		p, ok := r.items[a.ProductID]
		if !ok {
			if a.IgnoreMissing {
				continue
			}
			return nil, fmt.Errorf("product %s: %w", a.ProductID, repository.ErrNotFound)
		}
		q, seen := next[a.ProductID]
		if !seen {
			q = p.Quantity
		}
		if q+a.Delta < 0 && !a.AllowNegative {
			return nil, fmt.Errorf("%s: %w", p.Name, repository.ErrNegativeStock)
		}
		next[a.ProductID] = q + a.Delta
	}
	var out []model.Product
	for _, a := range adj {
		p, ok := r.items[a.ProductID]
		if !ok {
			continue
		}
		before := p.Quantity
		p.Quantity += a.Delta
		r.movements = append(r.movements, model.StockMovement{
			ProductID: p.ID, Delta: a.Delta, QuantityBefore: before, QuantityAfter: p.Quantity,
			Reason: a.Reason, ReferenceID: a.ReferenceID, UserID: a.UserID,
		})
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) SaveWithQuantity(_ context.Context, p *model.Product, target *int, reason, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[p.ID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if r.failSave != nil {
		return false, r.failSave
	}
	p.Quantity = stored.Quantity
	moved := target != nil && *target != stored.Quantity
	if moved {
		p.Quantity = *target
		r.movements = append(r.movements, model.StockMovement{
			ProductID: p.ID, Delta: *target - stored.Quantity, QuantityBefore: stored.Quantity,
			QuantityAfter: *target, Reason: reason, UserID: userID,
		})
	}
	cp := *p
	r.items[p.ID] = &cp
	return moved, nil
}

func (r *stubProductRepo) qty(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Quantity
}

// ── catalog ───────────────────────────────────────────────────────────────────

type stubCatalogRepo struct {
	items map[model.CatalogKind]map[string]*model.CatalogEntry
}

var _ repository.CatalogRepository = (*stubCatalogRepo)(nil)

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{items: make(map[model.CatalogKind]map[string]*model.CatalogEntry)}
}

func (r *stubCatalogRepo) add(kind model.CatalogKind, id, name string) {
	if r.items[kind] == nil {
		r.items[kind] = make(map[string]*model.CatalogEntry)
	}
	r.items[kind][id] = &model.CatalogEntry{ID: id, Name: name}
}

func (r *stubCatalogRepo) Create(_ context.Context, kind model.CatalogKind, e *model.CatalogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if r.items[kind] == nil {
		r.items[kind] = make(map[string]*model.CatalogEntry)
	}
	cp := *e
	r.items[kind][e.ID] = &cp
	return nil
}

func (r *stubCatalogRepo) List(_ context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error) {
	out := make([]model.CatalogEntry, 0)
	for _, e := range r.items[kind] {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubCatalogRepo) FindByID(_ context.Context, kind model.CatalogKind, id string) (*model.CatalogEntry, error) {
	e, ok := r.items[kind][id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubCatalogRepo) FindByName(_ context.Context, kind model.CatalogKind, name string) (*model.CatalogEntry, error) {
	for _, e := range r.items[kind] {
		if strings.EqualFold(e.Name, name) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubCatalogRepo) Update(_ context.Context, kind model.CatalogKind, e *model.CatalogEntry) error {
	cp := *e
	r.items[kind][e.ID] = &cp
	return nil
}

func (r *stubCatalogRepo) Delete(_ context.Context, kind model.CatalogKind, id string) error {
	if _, ok := r.items[kind][id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items[kind], id)
	return nil
}

// ── orders ────────────────────────────────────────────────────────────────────

// stubOrderRepo holds its lock across the stock change in CreateWithStock
// and Transition, which gives the same all-or-nothing result as the
// Firestore transaction. failWrite makes every order write fail.
type stubOrderRepo struct {
	mu        sync.Mutex
	items     map[string]*model.Order
	products  *stubProductRepo
	failWrite error
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

func newStubOrderRepo(products *stubProductRepo) *stubOrderRepo {
	return &stubOrderRepo{items: make(map[string]*model.Order), products: products}
}

func (r *stubOrderRepo) CreateWithStock(ctx context.Context, o *model.Order, adj []repository.StockAdjustment) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if _, ok := r.items[o.ID]; ok {
		return nil, repository.ErrAlreadyExists
	}
	if r.failWrite != nil {
		return nil, r.failWrite
	}
	var adjusted []model.Product
	if len(adj) > 0 {
		var err error
		if adjusted, err = r.products.AdjustQuantities(ctx, adj); err != nil {
			return nil, err
		}
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	cp := *o
	r.items[o.ID] = &cp
	return adjusted, nil
}

func (r *stubOrderRepo) Transition(ctx context.Context, id string, mutate func(o *model.Order) ([]repository.StockAdjustment, error)) (*model.Order, []model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	o := *stored
	adj, err := mutate(&o)
	if err != nil {
		return nil, nil, err
	}
	if r.failWrite != nil {
		return nil, nil, r.failWrite
	}
	var adjusted []model.Product
	if len(adj) > 0 {
		if adjusted, err = r.products.AdjustQuantities(ctx, adj); err != nil {
			return nil, nil, err
		}
	}
	r.items[id] = &o
	cp := o
	return &cp, adjusted, nil
}

func (r *stubOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	cp := *o
	r.items[o.ID] = &cp
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) FindByWooID(_ context.Context, wooID int64) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.items {
		if o.WooCommerceID != nil && *o.WooCommerceID == wooID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubOrderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	all, _ := r.ListAll(ctx)
	out := all[:0]
	for _, o := range all {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) ListAll(_ context.Context) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Order, 0, len(r.items))
	for _, o := range r.items {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubOrderRepo) Update(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	cp := *o
	r.items[o.ID] = &cp
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// ── small repositories ────────────────────────────────────────────────────────

type stubHistoryRepo struct{ entries []model.PriceHistory }

var _ repository.PriceHistoryRepository = (*stubHistoryRepo)(nil)

func (r *stubHistoryRepo) Create(_ context.Context, h *model.PriceHistory) error {
	h.ID = uuid.NewString()
	h.ChangedAt = time.Now().UTC()
	r.entries = append(r.entries, *h)
	return nil
}

func (r *stubHistoryRepo) ListByProduct(_ context.Context, productID string, limit int) ([]model.PriceHistory, error) {
	var out []model.PriceHistory
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].ProductID == productID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

type stubActivityRepo struct {
	mu      sync.Mutex
	entries []model.ActivityLog
}

var _ repository.ActivityRepository = (*stubActivityRepo)(nil)

func (r *stubActivityRepo) Create(_ context.Context, a *model.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *a)
	return nil
}

func (r *stubActivityRepo) List(_ context.Context, filter dto.ActivityFilter) ([]model.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ActivityLog
	for i := len(r.entries) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *stubActivityRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type stubStateRepo struct{ state model.SyncState }

var _ repository.SyncStateRepository = (*stubStateRepo)(nil)

func (r *stubStateRepo) Get(context.Context) (*model.SyncState, error) {
	cp := r.state
	return &cp, nil
}

func (r *stubStateRepo) Save(_ context.Context, s *model.SyncState) error {
	r.state = *s
	return nil
}

type stubUserRepo struct{ users map[string]*model.User }

var _ repository.UserRepository = (*stubUserRepo)(nil)

func (r *stubUserRepo) Upsert(_ context.Context, u *model.User) error {
	if r.users == nil {
		r.users = make(map[string]*model.User)
	}
	cp := *u
	r.users[u.UID] = &cp
	return nil
}

func (r *stubUserRepo) FindByUID(_ context.Context, uid string) (*model.User, error) {
	u, ok := r.users[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) List(context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

// ── collaborators ─────────────────────────────────────────────────────────────

type stubDispatcher struct {
	mu          sync.Mutex
	stockPushes []string
	orderPushes []string
	emails      []string
}

var _ JobDispatcher = (*stubDispatcher)(nil)

func (d *stubDispatcher) EnqueueStockPush(_ context.Context, productID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stockPushes = append(d.stockPushes, productID)
	return nil
}

func (d *stubDispatcher) EnqueueOrderStatusPush(_ context.Context, orderID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orderPushes = append(d.orderPushes, orderID)
	return nil
}

func (d *stubDispatcher) EnqueueEmail(_ context.Context, to []string, subject, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emails = append(d.emails, strings.Join(to, ",")+"|"+subject+"|"+body)
	return nil
}

type stubWoo struct {
	orders        []infra.WooOrder
	products      []infra.WooProduct
	listErr       error
	stockUpdates  map[int64]int
	statusUpdates map[int64]string
	queries       []infra.WooOrderQuery
	cb            *infra.CircuitBreaker
}

var _ WooAPI = (*stubWoo)(nil)

func newStubWoo() *stubWoo {
	return &stubWoo{
		stockUpdates:  make(map[int64]int),
		statusUpdates: make(map[int64]string),
		cb:            infra.NewCircuitBreaker(infra.DefaultCBConfig("test")),
	}
}

func (w *stubWoo) ListOrders(_ context.Context, q infra.WooOrderQuery) ([]infra.WooOrder, int, error) {
	w.queries = append(w.queries, q)
	if w.listErr != nil {
		return nil, 0, w.listErr
	}
	return w.orders, 1, nil
}

func (w *stubWoo) GetOrder(_ context.Context, id int64) (*infra.WooOrder, error) {
	for i := range w.orders {
		if w.orders[i].ID == id {
			return &w.orders[i], nil
		}
	}
	return nil, infra.ErrWooNotFound
}

func (w *stubWoo) UpdateOrderStatus(_ context.Context, id int64, status string) error {
	w.statusUpdates[id] = status
	return nil
}

func (w *stubWoo) ListProducts(_ context.Context, _, _ int) ([]infra.WooProduct, int, error) {
	return w.products, 1, nil
}

func (w *stubWoo) UpdateProductStock(_ context.Context, id int64, qty int) error {
	w.stockUpdates[id] = qty
	return nil
}

func (w *stubWoo) Breaker() *infra.CircuitBreaker { return w.cb }

type stubLocker struct{ held bool }

var _ Locker = (*stubLocker)(nil)

func (l *stubLocker) Acquire(context.Context, string, time.Duration) (string, bool, error) {
	if l.held {
		return "", false, nil
	}
	l.held = true
	return "token", true, nil
}

func (l *stubLocker) Release(context.Context, string, string) error {
	l.held = false
	return nil
}

type stubClaims struct {
	users  map[string]*auth.UserRecord
	claims map[string]map[string]interface{}
}

var _ ClaimsClient = (*stubClaims)(nil)

func (c *stubClaims) GetUser(_ context.Context, uid string) (*auth.UserRecord, error) {
	u, ok := c.users[uid]
	if !ok {
		return nil, fmt.Errorf("no user %s", uid)
	}
	return u, nil
}

func (c *stubClaims) SetCustomUserClaims(_ context.Context, uid string, claims map[string]interface{}) error {
	if c.claims == nil {
		c.claims = make(map[string]map[string]interface{})
	}
	c.claims[uid] = claims
	return nil
}

var testActor = model.Actor{UID: "u-1", Name: "Dana", Email: "dana@example.com", Role: model.RoleManager}

func int64Ptr(v int64) *int64 { return &v }
