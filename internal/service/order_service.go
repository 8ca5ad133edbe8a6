package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "RON"

// OrderService defines the business logic contract for orders.
type OrderService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, id string) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	Update(ctx context.Context, actor model.Actor, id string, req dto.UpdateOrderRequest) (*dto.OrderResponse, error)
	UpdateStatus(ctx context.Context, actor model.Actor, id, status string) (*dto.OrderResponse, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
	// Load returns the stored order, for renderers such as the PDF slip.
	Load(ctx context.Context, id string) (*model.Order, error)
}

// transitions lists the statuses each status may move to. cancelled and
// refunded are terminal.
var transitions = map[string][]string{
	model.OrderPending:    {model.OrderProcessing, model.OrderOnHold, model.OrderCancelled, model.OrderFailed, model.OrderCompleted},
	model.OrderProcessing: {model.OrderCompleted, model.OrderOnHold, model.OrderCancelled, model.OrderRefunded},
	model.OrderOnHold:     {model.OrderPending, model.OrderProcessing, model.OrderCancelled},
	model.OrderCompleted:  {model.OrderRefunded},
	model.OrderFailed:     {model.OrderPending, model.OrderCancelled},
}

// errUnchanged aborts an order transition that would not change anything.
var errUnchanged = errors.New("order unchanged")

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type OrderServiceDeps struct {
	Orders     repository.OrderRepository
	Products   repository.ProductRepository
	Activity   ActivityService
	Dispatcher JobDispatcher
	Redis      *redis.Client
	PushToWoo  bool
}

type orderService struct {
	repo       repository.OrderRepository
	products   repository.ProductRepository
	activity   ActivityService
	dispatcher JobDispatcher
	rdb        *redis.Client
	pushToWoo  bool
	now        func() time.Time
}

func NewOrderService(d OrderServiceDeps) OrderService {
	return &orderService{
		repo:       d.Orders,
		products:   d.Products,
		activity:   d.Activity,
		dispatcher: d.Dispatcher,
		rdb:        d.Redis,
		pushToWoo:  d.PushToWoo,
		now:        time.Now,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
//   1. Resolve products and snapshot name/sku/price on each line
//   2. Compute totals with decimal arithmetic
//   3. Write the order and deduct stock for all lines in one Firestore
//      transaction

func (s *orderService) Create(ctx context.Context, actor model.Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	status := req.Status
	if status == "" {
		status = model.OrderPending
	}
	if !model.HoldsStock(status) {
		return nil, fmt.Errorf("a new order cannot start as %s: %w", status, ErrInvalidInput)
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	vatByLine := make([]decimal.Decimal, 0, len(req.Items))
	for _, it := range req.Items {
		p, err := s.products.FindByID(ctx, it.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("unknown product %s: %w", it.ProductID, ErrInvalidInput)
		}
		if err != nil {
			return nil, err
		}
		price := dec(p.Price)
		if it.Price != nil {
			if it.Price.IsNegative() {
				return nil, fmt.Errorf("price for %s must not be negative: %w", p.Name, ErrInvalidInput)
			}
			price = *it.Price
		}
		lineTotal := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items = append(items, model.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			SKU:         p.Barcode,
			Quantity:    it.Quantity,
			Price:       toFloat(price),
			Total:       toFloat(lineTotal),
		})
		vatByLine = append(vatByLine, VATAmount(lineTotal, dec(p.VATPercentage)))
	}

	totals, err := computeTotals(items, vatByLine, req.ShippingCost, req.Discount)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	o := &model.Order{
		ID:            uuid.NewString(),
		OrderNumber:   newOrderNumber(now),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Billing:       req.Billing,
		Shipping:      req.Shipping,
		Items:         items,
		Status:        status,
		Subtotal:      toFloat(totals.subtotal),
		ShippingCost:  toFloat(req.ShippingCost),
		Discount:      toFloat(req.Discount),
		Tax:           toFloat(totals.tax),
		Total:         toFloat(totals.total),
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Source:        model.SourceManual,
		CreatedAt:     now,
	}
	if status == model.OrderCompleted {
		o.CompletedAt = &now
	}

	o.StockDeducted = true
	adjusted, err := s.repo.CreateWithStock(ctx, o, orderAdjustments(o, -1, model.MovementOrder, actor.UID, false))
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.activity.Record(ctx, actor, model.ActionCreate, model.EntityOrder, o.ID, o.OrderNumber,
		fmt.Sprintf("%d item(s), total %s %s", len(o.Items), totals.total.StringFixed(2), o.Currency))
	s.afterStockChange(ctx, adjusted)

	log.Info().Str("order_id", o.ID).Str("order_number", o.OrderNumber).Msg("order created")
	return orderToResponse(o), nil
}

func (s *orderService) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return orderToResponse(o), nil
}

func (s *orderService) Load(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return o, nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *orderService) Update(ctx context.Context, actor model.Actor, id string, req dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	o, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CustomerName != nil {
		o.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	setIf(&o.CustomerEmail, req.CustomerEmail)
	setIf(&o.CustomerPhone, req.CustomerPhone)
	setIf(&o.PaymentMethod, req.PaymentMethod)
	setIf(&o.Notes, req.Notes)
	if req.Billing != nil {
		o.Billing = *req.Billing
	}
	if req.Shipping != nil {
		o.Shipping = *req.Shipping
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	s.activity.Record(ctx, actor, model.ActionUpdate, model.EntityOrder, o.ID, o.OrderNumber, "")
	return orderToResponse(o), nil
}

func (s *orderService) UpdateStatus(ctx context.Context, actor model.Actor, id, status string) (*dto.OrderResponse, error) {
	if !model.ValidOrderStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
	}

	now := s.now().UTC()
	var from string
	o, adjusted, err := s.repo.Transition(ctx, id, func(o *model.Order) ([]repository.StockAdjustment, error) {
		from = o.Status
		if o.Status == status {
			return nil, errUnchanged
		}
		if !CanTransition(o.Status, status) {
			return nil, fmt.Errorf("%s -> %s: %w", o.Status, status, ErrInvalidTransition)
		}
		return applyStatus(o, status, actor.UID, now), nil
	})
	if errors.Is(err, errUnchanged) {
		return s.Get(ctx, id)
	}
	if err != nil {
		return nil, notFound(err, "order", id)
	}

	s.activity.Record(ctx, actor, model.ActionStatusChange, model.EntityOrder, o.ID, o.OrderNumber,
		fmt.Sprintf("%s -> %s", from, status))
	s.afterStockChange(ctx, adjusted)
	if o.Source == model.SourceWooCommerce && o.WooCommerceID != nil && s.dispatcher != nil {
		if err := s.dispatcher.EnqueueOrderStatusPush(ctx, o.ID); err != nil {
			log.Warn().Err(err).Str("order_id", o.ID).Msg("enqueue order status push failed")
		}
	}
	return orderToResponse(o), nil
}

// Delete only removes orders that no longer hold stock, so inventory never
// loses track of reserved units.
func (s *orderService) Delete(ctx context.Context, actor model.Actor, id string) error {
	o, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if o.StockDeducted && model.HoldsStock(o.Status) {
		return fmt.Errorf("order %s is %s and still holds stock; cancel it first: %w", o.OrderNumber, o.Status, ErrConflict)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "order", id)
	}
	s.activity.Record(ctx, actor, model.ActionDelete, model.EntityOrder, o.ID, o.OrderNumber, "")
	invalidateDashboard(ctx, s.rdb)
	return nil
}

func (s *orderService) afterStockChange(ctx context.Context, adjusted []model.Product) {
	if s.pushToWoo {
		enqueueStockPushes(ctx, s.dispatcher, adjusted)
	}
	invalidateDashboard(ctx, s.rdb)
}

// applyStatus moves o to status and returns the stock adjustments that keep
// inventory consistent: leaving the stock-holding statuses releases deducted
// stock, entering them deducts it again. Imported orders may push stock below
// zero because the shop has already sold the goods; manual orders may not.
// The caller applies the adjustments in the same transaction as the order.
func applyStatus(o *model.Order, status, userID string, now time.Time) []repository.StockAdjustment {
	var adj []repository.StockAdjustment
	switch {
	case o.StockDeducted && !model.HoldsStock(status):
		adj = orderAdjustments(o, 1, model.MovementOrderRelease, userID, true)
		o.StockDeducted = false
	case !o.StockDeducted && model.HoldsStock(status):
		lenient := o.Source == model.SourceWooCommerce
		adj = orderAdjustments(o, -1, model.MovementOrder, userID, lenient)
		o.StockDeducted = true
	}

	o.Status = status
	if status == model.OrderCompleted && o.CompletedAt == nil {
		o.CompletedAt = &now
	}
	return adj
}

// orderAdjustments builds one adjustment per distinct product on the order.
// Lines without a local product (unmatched SKUs) are skipped.
// lenient adjustments may go below zero and skip deleted products.
func orderAdjustments(o *model.Order, sign int, reason, userID string, lenient bool) []repository.StockAdjustment {
	index := make(map[string]int)
	var out []repository.StockAdjustment
	for _, it := range o.Items {
		if it.ProductID == "" || it.Quantity == 0 {
			continue
		}
		if i, ok := index[it.ProductID]; ok {
			out[i].Delta += sign * it.Quantity
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, repository.StockAdjustment{
			ProductID:     it.ProductID,
			Delta:         sign * it.Quantity,
			Reason:        reason,
			ReferenceID:   o.ID,
			UserID:        userID,
			AllowNegative: lenient,
			IgnoreMissing: lenient,
		})
	}
	return out
}

type orderTotals struct {
	subtotal decimal.Decimal
	tax      decimal.Decimal
	total    decimal.Decimal
}

// computeTotals sums VAT-inclusive line totals. tax is the VAT contained in
// the lines and is informational; it is not added on top.
func computeTotals(items []model.OrderItem, vatByLine []decimal.Decimal, shipping, discount decimal.Decimal) (orderTotals, error) {
	var t orderTotals
	for i, it := range items {
		t.subtotal = t.subtotal.Add(dec(it.Total))
		if i < len(vatByLine) {
			t.tax = t.tax.Add(vatByLine[i])
		}
	}
	t.total = t.subtotal.Add(shipping).Sub(discount)
	if t.total.IsNegative() {
		return t, fmt.Errorf("discount exceeds order value: %w", ErrInvalidInput)
	}
	t.tax = t.tax.Round(2)
	return t, nil
}

// newOrderNumber returns ORD-YYYYMMDD-xxxxxx with six random hex digits.
func newOrderNumber(now time.Time) string {
	return "ORD-" + now.Format("20060102") + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			Price:       dec(it.Price),
			Total:       dec(it.Total),
		})
	}
	return &dto.OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		Billing:       o.Billing,
		Shipping:      o.Shipping,
		Items:         items,
		Status:        o.Status,
		Subtotal:      dec(o.Subtotal),
		ShippingCost:  dec(o.ShippingCost),
		Discount:      dec(o.Discount),
		Tax:           dec(o.Tax),
		Total:         dec(o.Total),
		Currency:      o.Currency,
		PaymentMethod: o.PaymentMethod,
		Notes:         o.Notes,
		Source:        o.Source,
		WooCommerceID: o.WooCommerceID,
		StockDeducted: o.StockDeducted,
		CreatedAt:     fmtTime(o.CreatedAt),
		UpdatedAt:     fmtTime(o.UpdatedAt),
		CompletedAt:   fmtTimePtr(o.CompletedAt),
	}
}
