package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/infra"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	syncLockKey = "lock:woo_sync"
	syncLockTTL = 10 * time.Minute
	wooPageSize = 100
)

// Webhook and sync outcomes for a single WooCommerce order.
const (
	OutcomeNew     = "new"
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
	OutcomeIgnored = "ignored"
)

// SyncService reconciles local orders and stock with the WooCommerce shop.
// Every order is keyed by its WooCommerce id, so running a sync twice, or
// receiving the same webhook twice, never duplicates an order or deducts
// stock twice.
type SyncService interface {
	SyncOrders(ctx context.Context, actor model.Actor) (*model.SyncResult, error)
	MapProducts(ctx context.Context, actor model.Actor) (*dto.MapProductsResponse, error)
	PushStock(ctx context.Context, productID string) error
	PushOrderStatus(ctx context.Context, orderID string) error
	HandleWebhook(ctx context.Context, body []byte, signature string) (*dto.WebhookResponse, error)
	Status(ctx context.Context) (*dto.SyncStatusResponse, error)
}

type SyncServiceDeps struct {
	Woo           WooAPI // nil when WooCommerce is not configured
	Locker        Locker
	Orders        repository.OrderRepository
	Products      repository.ProductRepository
	State         repository.SyncStateRepository
	Activity      ActivityService
	Redis         *redis.Client
	WebhookSecret string
}

type syncService struct {
	woo           WooAPI
	locker        Locker
	orders        repository.OrderRepository
	products      repository.ProductRepository
	state         repository.SyncStateRepository
	activity      ActivityService
	rdb           *redis.Client
	webhookSecret string
	now           func() time.Time
}

func NewSyncService(d SyncServiceDeps) SyncService {
	return &syncService{
		woo:           d.Woo,
		locker:        d.Locker,
		orders:        d.Orders,
		products:      d.Products,
		state:         d.State,
		activity:      d.Activity,
		rdb:           d.Redis,
		webhookSecret: d.WebhookSecret,
		now:           time.Now,
	}
}

// ── SyncOrders ────────────────────────────────────────────────────────────────
// Pulls every order modified since the stored watermark, oldest first. The
// watermark only advances past orders that were stored successfully, so a
// failed order is retried on the next run.

func (s *syncService) SyncOrders(ctx context.Context, actor model.Actor) (*model.SyncResult, error) {
	if s.woo == nil {
		return nil, ErrWooNotConfigured
	}
	release, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	state, err := s.state.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sync state: %w", err)
	}
	bySKU, err := s.productsBySKU(ctx)
	if err != nil {
		return nil, err
	}

	result := model.SyncResult{StartedAt: s.now().UTC(), UnmatchedSKUs: []string{}}
	query := infra.WooOrderQuery{PerPage: wooPageSize}
	if state.LastOrderSyncAt != nil {
		// One second of overlap: modified_after is exclusive and has second precision.
		after := state.LastOrderSyncAt.Add(-time.Second)
		query.ModifiedAfter = &after
	}

	watermark := state.LastOrderSyncAt
	healthy := true
	for page := 1; ; page++ {
		query.Page = page
		orders, pages, err := s.woo.ListOrders(ctx, query)
		if err != nil {
			result.FinishedAt = s.now().UTC()
			state.LastResult = result
			state.LastError = err.Error()
			s.saveState(ctx, state)
			return nil, fmt.Errorf("list woocommerce orders (page %d): %w", page, err)
		}

		for i := range orders {
			wo := &orders[i]
			outcome, err := s.upsert(ctx, wo, bySKU, &result)
			if err != nil {
				result.Errors++
				healthy = false
				log.Error().Err(err).Int64("woo_id", wo.ID).Msg("woo sync: order failed")
				continue
			}
			countOutcome(&result, outcome)
			if healthy {
				if mod, err := infra.ParseWooTime(wo.DateModifiedGMT); err == nil && !mod.IsZero() {
					watermark = &mod
				}
			}
		}
		if page >= pages || len(orders) == 0 {
			break
		}
	}

	result.FinishedAt = s.now().UTC()
	state.LastOrderSyncAt = watermark
	state.LastResult = result
	state.LastError = ""
	s.saveState(ctx, state)

	s.activity.Record(ctx, actor, model.ActionSync, model.EntitySync, "orders", "WooCommerce orders",
		fmt.Sprintf("new %d, updated %d, skipped %d, errors %d, unmatched SKUs %d",
			result.New, result.Updated, result.Skipped, result.Errors, len(result.UnmatchedSKUs)))
	invalidateDashboard(ctx, s.rdb)

	log.Info().
		Int("new", result.New).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("errors", result.Errors).
		Msg("woo sync: orders done")
	return &result, nil
}

// upsert stores one WooCommerce order and applies its stock effect. A new
// order is written under its deterministic id, so when two deliveries of the
// same order race, the loser falls through to the update path.
func (s *syncService) upsert(ctx context.Context, wo *infra.WooOrder, bySKU map[string]*model.Product, result *model.SyncResult) (string, error) {
	if !model.ValidOrderStatus(wo.Status) {
		// checkout-draft, trash and plugin statuses never touch inventory.
		return OutcomeSkipped, nil
	}

	existing, err := s.orders.FindByWooID(ctx, wo.ID)
	if errors.Is(err, repository.ErrNotFound) {
		err = s.createFromWoo(ctx, wo, bySKU, result)
		if err == nil {
			return OutcomeNew, nil
		}
		if !errors.Is(err, repository.ErrAlreadyExists) {
			return "", err
		}
		log.Debug().Int64("woo_id", wo.ID).Msg("woo sync: order stored concurrently, updating instead")
		existing, err = s.orders.FindByID(ctx, wooOrderID(wo.ID))
	}
	if err != nil {
		return "", err
	}

	incoming := orderFromWoo(wo, bySKU, nil)
	var from string
	updated, adjusted, err := s.orders.Transition(ctx, existing.ID, func(o *model.Order) ([]repository.StockAdjustment, error) {
		if !wooOrderChanged(o, incoming) {
			return nil, errUnchanged
		}
		from = o.Status
		o.CustomerName = incoming.CustomerName
		o.CustomerEmail = incoming.CustomerEmail
		o.CustomerPhone = incoming.CustomerPhone
		o.Billing = incoming.Billing
		o.Shipping = incoming.Shipping
		o.ShippingCost = incoming.ShippingCost
		o.Discount = incoming.Discount
		o.Tax = incoming.Tax
		o.Total = incoming.Total
		o.PaymentMethod = incoming.PaymentMethod
		o.Notes = incoming.Notes
		if incoming.CompletedAt != nil {
			o.CompletedAt = incoming.CompletedAt
		}
		// The shop is authoritative, so the local transition table is not applied.
		return applyStatus(o, incoming.Status, model.SystemActor.UID, s.now().UTC()), nil
	})
	if errors.Is(err, errUnchanged) {
		return OutcomeSkipped, nil
	}
	if err != nil {
		return "", err
	}
	refreshIndex(bySKU, adjusted)
	if from != updated.Status {
		s.activity.Record(ctx, model.SystemActor, model.ActionStatusChange, model.EntityOrder, updated.ID, updated.OrderNumber,
			fmt.Sprintf("%s -> %s (woocommerce)", from, updated.Status))
	}
	return OutcomeUpdated, nil
}

func (s *syncService) createFromWoo(ctx context.Context, wo *infra.WooOrder, bySKU map[string]*model.Product, result *model.SyncResult) error {
	o := orderFromWoo(wo, bySKU, result)
	o.ID = wooOrderID(wo.ID)

	var adj []repository.StockAdjustment
	if model.HoldsStock(o.Status) {
		adj = orderAdjustments(o, -1, model.MovementOrder, model.SystemActor.UID, true)
		o.StockDeducted = true
	}
	adjusted, err := s.orders.CreateWithStock(ctx, o, adj)
	if err != nil {
		return err
	}
	refreshIndex(bySKU, adjusted)
	s.activity.Record(ctx, model.SystemActor, model.ActionCreate, model.EntityOrder, o.ID, o.OrderNumber, "imported from woocommerce")
	return nil
}

// wooOrderID is the document id of an imported order.
func wooOrderID(wooID int64) string {
	return "woo-" + strconv.FormatInt(wooID, 10)
}

// ── MapProducts ───────────────────────────────────────────────────────────────

func (s *syncService) MapProducts(ctx context.Context, actor model.Actor) (*dto.MapProductsResponse, error) {
	if s.woo == nil {
		return nil, ErrWooNotConfigured
	}
	bySKU, err := s.productsBySKU(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.MapProductsResponse{UnmatchedSKUs: []string{}}
	for page := 1; ; page++ {
		products, pages, err := s.woo.ListProducts(ctx, page, wooPageSize)
		if err != nil {
			return nil, fmt.Errorf("list woocommerce products (page %d): %w", page, err)
		}
		for _, wp := range products {
			resp.WooProducts++
			sku := strings.TrimSpace(wp.SKU)
			local, ok := bySKU[sku]
			switch {
			case sku == "" || !ok:
				resp.Unmatched++
				if sku != "" {
					resp.UnmatchedSKUs = append(resp.UnmatchedSKUs, sku)
				}
			case local.WooCommerceID != nil && *local.WooCommerceID == wp.ID:
				resp.AlreadyLinked++
			default:
				if err := s.products.SetWooID(ctx, local.ID, wp.ID); err != nil {
					return nil, fmt.Errorf("link product %s: %w", local.ID, err)
				}
				wooID := wp.ID
				local.WooCommerceID = &wooID
				resp.Mapped++
			}
		}
		if page >= pages || len(products) == 0 {
			break
		}
	}

	if state, err := s.state.Get(ctx); err == nil {
		now := s.now().UTC()
		state.LastProductMapAt = &now
		s.saveState(ctx, state)
	}
	s.activity.Record(ctx, actor, model.ActionSync, model.EntitySync, "products", "WooCommerce products",
		fmt.Sprintf("mapped %d, already linked %d, unmatched %d", resp.Mapped, resp.AlreadyLinked, resp.Unmatched))
	return resp, nil
}

// ── Pushes (run from the job workers) ─────────────────────────────────────────

// PushStock writes the current local quantity to the linked shop product.
// Negative local stock is published as zero.
func (s *syncService) PushStock(ctx context.Context, productID string) error {
	if s.woo == nil {
		return ErrWooNotConfigured
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return notFound(err, "product", productID)
	}
	if !p.IsLinkedToWoo() {
		return fmt.Errorf("product %s: %w", productID, ErrWooNotLinked)
	}
	qty := p.Quantity
	if qty < 0 {
		qty = 0
	}
	if err := s.woo.UpdateProductStock(ctx, *p.WooCommerceID, qty); err != nil {
		return fmt.Errorf("push stock for %s: %w", p.Barcode, err)
	}
	// SetWooID also stamps lastWooSyncAt.
	return s.products.SetWooID(ctx, p.ID, *p.WooCommerceID)
}

func (s *syncService) PushOrderStatus(ctx context.Context, orderID string) error {
	if s.woo == nil {
		return ErrWooNotConfigured
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return notFound(err, "order", orderID)
	}
	if o.WooCommerceID == nil {
		return nil
	}
	return s.woo.UpdateOrderStatus(ctx, *o.WooCommerceID, o.Status)
}

// ── Webhook ───────────────────────────────────────────────────────────────────

func (s *syncService) HandleWebhook(ctx context.Context, body []byte, signature string) (*dto.WebhookResponse, error) {
	if s.webhookSecret == "" {
		return nil, ErrWooNotConfigured
	}
	if !infra.VerifyWooSignature(body, signature, s.webhookSecret) {
		return nil, ErrInvalidSignature
	}

	var wo infra.WooOrder
	// The delivery test WooCommerce sends on webhook creation is form-encoded.
	if err := json.Unmarshal(body, &wo); err != nil || wo.ID == 0 {
		return &dto.WebhookResponse{Outcome: OutcomeIgnored}, nil
	}

	bySKU, err := s.productsBySKU(ctx)
	if err != nil {
		return nil, err
	}
	result := model.SyncResult{}
	outcome, err := s.upsert(ctx, &wo, bySKU, &result)
	if err != nil {
		return nil, fmt.Errorf("webhook order %d: %w", wo.ID, err)
	}
	if outcome != OutcomeSkipped {
		invalidateDashboard(ctx, s.rdb)
	}
	if len(result.UnmatchedSKUs) > 0 {
		log.Warn().Int64("woo_id", wo.ID).Strs("skus", result.UnmatchedSKUs).Msg("webhook order has unmatched SKUs")
	}

	resp := &dto.WebhookResponse{Outcome: outcome}
	if o, err := s.orders.FindByWooID(ctx, wo.ID); err == nil {
		resp.OrderID = o.ID
	}
	return resp, nil
}

func (s *syncService) Status(ctx context.Context) (*dto.SyncStatusResponse, error) {
	state, err := s.state.Get(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.SyncStatusResponse{
		Enabled:          s.woo != nil,
		CircuitBreaker:   "disabled",
		LastOrderSyncAt:  fmtTimePtr(state.LastOrderSyncAt),
		LastProductMapAt: fmtTimePtr(state.LastProductMapAt),
		LastResult:       state.LastResult,
		LastError:        state.LastError,
	}
	if s.woo != nil {
		resp.CircuitBreaker = s.woo.Breaker().State().String()
	}
	return resp, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// lock takes the cross-instance sync lock. Without a locker (tests, no Redis)
// syncs are not serialised.
func (s *syncService) lock(ctx context.Context) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	token, ok, err := s.locker.Acquire(ctx, syncLockKey, syncLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return nil, ErrSyncInProgress
	}
	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), syncLockKey, token); err != nil {
			log.Warn().Err(err).Msg("release sync lock failed")
		}
	}, nil
}

func (s *syncService) saveState(ctx context.Context, state *model.SyncState) {
	if err := s.state.Save(ctx, state); err != nil {
		log.Error().Err(err).Msg("save sync state failed")
	}
}

// productsBySKU indexes local products by barcode, which is the shop SKU.
func (s *syncService) productsBySKU(ctx context.Context) (map[string]*model.Product, error) {
	all, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	idx := make(map[string]*model.Product, len(all))
	for i := range all {
		if all[i].Barcode != "" {
			idx[all[i].Barcode] = &all[i]
		}
	}
	return idx, nil
}

func refreshIndex(bySKU map[string]*model.Product, adjusted []model.Product) {
	for i := range adjusted {
		if p, ok := bySKU[adjusted[i].Barcode]; ok {
			p.Quantity = adjusted[i].Quantity
		}
	}
}

func countOutcome(r *model.SyncResult, outcome string) {
	switch outcome {
	case OutcomeNew:
		r.New++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeSkipped:
		r.Skipped++
	}
}

// orderFromWoo maps a shop order onto the local shape. When result is not
// nil, SKUs with no local product are recorded on it.
func orderFromWoo(wo *infra.WooOrder, bySKU map[string]*model.Product, result *model.SyncResult) *model.Order {
	wooID := wo.ID
	o := &model.Order{
		OrderNumber:   wo.Number,
		CustomerName:  strings.TrimSpace(wo.Billing.FirstName + " " + wo.Billing.LastName),
		CustomerEmail: wo.Billing.Email,
		CustomerPhone: wo.Billing.Phone,
		Billing:       addressFromWoo(wo.Billing),
		Shipping:      addressFromWoo(wo.Shipping),
		Status:        wo.Status,
		ShippingCost:  toFloat(parseMoney(wo.ShippingTotal)),
		Discount:      toFloat(parseMoney(wo.DiscountTotal)),
		Tax:           toFloat(parseMoney(wo.TotalTax)),
		Total:         toFloat(parseMoney(wo.Total)),
		Currency:      wo.Currency,
		PaymentMethod: wo.PaymentMethodTitle,
		Notes:         wo.CustomerNote,
		Source:        model.SourceWooCommerce,
		WooCommerceID: &wooID,
	}
	if o.OrderNumber == "" {
		o.OrderNumber = strconv.FormatInt(wo.ID, 10)
	}
	if o.CustomerName == "" {
		o.CustomerName = wo.Billing.Company
	}
	if t, err := infra.ParseWooTime(wo.DateCreatedGMT); err == nil {
		o.CreatedAt = t
	}
	if t, err := infra.ParseWooTime(wo.DateCompletedGMT); err == nil && !t.IsZero() {
		o.CompletedAt = &t
	}

	subtotal := decimal.Zero
	for _, li := range wo.LineItems {
		total := parseMoney(li.Total)
		subtotal = subtotal.Add(total)
		item := model.OrderItem{
			ProductName: li.Name,
			SKU:         li.SKU,
			Quantity:    li.Quantity,
			Price:       li.Price,
			Total:       toFloat(total),
		}
		if p, ok := bySKU[strings.TrimSpace(li.SKU)]; ok && li.SKU != "" {
			item.ProductID = p.ID
		} else if result != nil {
			result.UnmatchedSKUs = appendUnique(result.UnmatchedSKUs, li.SKU)
		}
		o.Items = append(o.Items, item)
	}
	o.Subtotal = toFloat(subtotal)
	return o
}

func wooOrderChanged(local, incoming *model.Order) bool {
	return local.Status != incoming.Status ||
		local.Total != incoming.Total ||
		local.CustomerName != incoming.CustomerName ||
		local.CustomerEmail != incoming.CustomerEmail ||
		local.Billing != incoming.Billing ||
		local.Shipping != incoming.Shipping ||
		local.Notes != incoming.Notes
}

func addressFromWoo(a infra.WooAddress) model.Address {
	return model.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.State,
		Postcode:  a.Postcode,
		Country:   a.Country,
		Email:     a.Email,
		Phone:     a.Phone,
	}
}

func parseMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func appendUnique(list []string, v string) []string {
	label := v
	if label == "" {
		label = "(no sku)"
	}
	for _, s := range list {
		if s == label {
			return list
		}
	}
	return append(list, label)
}
