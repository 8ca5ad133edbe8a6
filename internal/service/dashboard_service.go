package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DashboardService computes the aggregate cards shown on the dashboard.
type DashboardService interface {
	// Stats serves the cached payload unless refresh is set or the cache is cold.
	Stats(ctx context.Context, refresh bool) (*dto.DashboardStats, error)
}

type DashboardServiceDeps struct {
	Products repository.ProductRepository
	Orders   repository.OrderRepository
	Catalog  repository.CatalogRepository
	Activity ActivityService
	Redis    *redis.Client
	TTL      time.Duration
	Location *time.Location
}

type dashboardService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	catalog  repository.CatalogRepository
	activity ActivityService
	rdb      *redis.Client
	ttl      time.Duration
	loc      *time.Location
	now      func() time.Time
}

func NewDashboardService(d DashboardServiceDeps) DashboardService {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{
		products: d.Products,
		orders:   d.Orders,
		catalog:  d.Catalog,
		activity: d.Activity,
		rdb:      d.Redis,
		ttl:      d.TTL,
		loc:      loc,
		now:      time.Now,
	}
}

const recentActivityLimit = 10

func (s *dashboardService) Stats(ctx context.Context, refresh bool) (*dto.DashboardStats, error) {
	if !refresh {
		if cached := s.fromCache(ctx); cached != nil {
			return cached, nil
		}
	}
	version := s.cacheVersion(ctx)

	var (
		products []model.Product
		orders   []model.Order
		names    catalogNames
		recent   []dto.ActivityItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.products.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.orders.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		names, err = loadCatalogNames(gctx, s.catalog)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.activity.List(gctx, dto.ActivityFilter{Limit: recentActivityLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := computeStats(products, orders, names, s.now().In(s.loc))
	stats.RecentActivity = recent
	s.toCache(ctx, version, stats)
	return stats, nil
}

func (s *dashboardService) fromCache(ctx context.Context) *dto.DashboardStats {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, DashboardCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("dashboard cache read failed")
		}
		return nil
	}
	var stats dto.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	stats.Cached = true
	return &stats
}

// cacheVersion reads the invalidation counter; "" disables the fill.
func (s *dashboardService) cacheVersion(ctx context.Context) string {
	if s.rdb == nil || s.ttl <= 0 {
		return ""
	}
	v, err := s.rdb.Get(ctx, DashboardVersionKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0"
	}
	if err != nil {
		log.Warn().Err(err).Msg("dashboard cache version read failed")
		return ""
	}
	return v
}

// fillScript sets the cache only if no invalidation happened since the
// caller read the version.
var fillScript = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

func (s *dashboardService) toCache(ctx context.Context, version string, stats *dto.DashboardStats) {
	if version == "" {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	stored, err := fillScript.Run(ctx, s.rdb, []string{DashboardCacheKey, DashboardVersionKey},
		version, raw, s.ttl.Milliseconds()).Int()
	if err != nil {
		log.Warn().Err(err).Msg("dashboard cache write failed")
		return
	}
	if stored == 0 {
		log.Debug().Msg("dashboard changed while computing; cache left cold")
	}
}

// computeStats derives every dashboard figure from the raw collections.
// now decides which orders count towards the current month.
func computeStats(products []model.Product, orders []model.Order, names catalogNames, now time.Time) *dto.DashboardStats {
	st := &dto.DashboardStats{
		OrdersByStatus: make(map[string]int),
		GeneratedAt:    now.UTC().Format(time.RFC3339),
	}

	byCategory := make(map[string]*dto.BreakdownItem)
	byLocation := make(map[string]*dto.BreakdownItem)
	marginSum := decimal.Zero
	priced := 0

	for i := range products {
		p := &products[i]
		cost, price, vat := dec(p.Cost), dec(p.Price), dec(p.VATPercentage)
		qty := decimal.NewFromInt(int64(p.Quantity))

		st.TotalProducts++
		st.TotalUnits += p.Quantity
		// Negative stock (oversold imports) must not reduce inventory value.
		if p.Quantity > 0 {
			st.InventoryCostValue = st.InventoryCostValue.Add(cost.Mul(qty))
			st.InventoryRetailValue = st.InventoryRetailValue.Add(price.Mul(qty))
		}
		switch p.StockStatus() {
		case model.StockLow:
			st.LowStockCount++
		case model.StockOut:
			st.OutOfStockCount++
		}
		if price.IsPositive() {
			marginSum = marginSum.Add(MarginPct(cost, price, vat))
			priced++
		}

		value := decimal.Zero
		if p.Quantity > 0 {
			value = price.Mul(qty)
		}
		addBreakdown(byCategory, p.CategoryID, names.name(model.KindCategory, p.CategoryID), p.Quantity, value)
		addBreakdown(byLocation, p.LocationID, names.name(model.KindLocation, p.LocationID), p.Quantity, value)
	}
	st.PotentialProfit = st.InventoryRetailValue.Sub(st.InventoryCostValue)
	if priced > 0 {
		st.AverageMarginPct = marginSum.Div(decimal.NewFromInt(int64(priced))).Round(2)
	}
	st.CategoryBreakdown = finishBreakdown(byCategory, st.InventoryRetailValue)
	st.LocationBreakdown = finishBreakdown(byLocation, st.InventoryRetailValue)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := range orders {
		o := &orders[i]
		st.TotalOrders++
		st.OrdersByStatus[o.Status]++
		if o.Status == model.OrderPending {
			st.PendingOrders++
		}
		if o.Status == model.OrderCompleted || o.Status == model.OrderProcessing {
			total := dec(o.Total)
			st.Revenue = st.Revenue.Add(total)
			if !o.CreatedAt.Before(monthStart) {
				st.RevenueThisMonth = st.RevenueThisMonth.Add(total)
			}
		}
	}

	st.InventoryCostValue = st.InventoryCostValue.Round(2)
	st.InventoryRetailValue = st.InventoryRetailValue.Round(2)
	st.PotentialProfit = st.PotentialProfit.Round(2)
	st.Revenue = st.Revenue.Round(2)
	st.RevenueThisMonth = st.RevenueThisMonth.Round(2)
	return st
}

func addBreakdown(m map[string]*dto.BreakdownItem, id, name string, units int, value decimal.Decimal) {
	if name == "" {
		name = "Unassigned"
		if id != "" {
			name = "Unknown"
		}
	}
	b, ok := m[id]
	if !ok {
		b = &dto.BreakdownItem{ID: id, Name: name}
		m[id] = b
	}
	b.Products++
	b.Units += units
	b.Value = b.Value.Add(value)
}

// finishBreakdown fills percentages of the total value and sorts by value,
// largest first, then by name.
func finishBreakdown(m map[string]*dto.BreakdownItem, total decimal.Decimal) []dto.BreakdownItem {
	out := make([]dto.BreakdownItem, 0, len(m))
	for _, b := range m {
		if total.IsPositive() {
			b.Percentage = b.Value.Div(total).Mul(hundred).Round(2)
		}
		b.Value = b.Value.Round(2)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}
