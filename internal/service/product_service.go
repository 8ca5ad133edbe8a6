package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ProductService defines the business logic contract for products and stock.
type ProductService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id string) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, actor model.Actor, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
	AdjustStock(ctx context.Context, actor model.Actor, id string, req dto.AdjustStockRequest) (*dto.StockAdjustmentResponse, error)
	LowStock(ctx context.Context) ([]dto.ProductResponse, error)
	PriceHistory(ctx context.Context, id string, limit int) (*dto.PriceHistoryListResponse, error)
	StockMovements(ctx context.Context, filter dto.StockMovementFilter) ([]dto.StockMovementItem, error)
}

type ProductServiceDeps struct {
	Products   repository.ProductRepository
	Catalog    repository.CatalogRepository
	History    repository.PriceHistoryRepository
	Movements  repository.StockMovementRepository
	Activity   ActivityService
	Dispatcher JobDispatcher
	Redis      *redis.Client
	PushToWoo  bool
}

type productService struct {
	repo       repository.ProductRepository
	catalog    repository.CatalogRepository
	history    repository.PriceHistoryRepository
	movements  repository.StockMovementRepository
	activity   ActivityService
	dispatcher JobDispatcher
	rdb        *redis.Client
	pushToWoo  bool
}

func NewProductService(d ProductServiceDeps) ProductService {
	return &productService{
		repo:       d.Products,
		catalog:    d.Catalog,
		history:    d.History,
		movements:  d.Movements,
		activity:   d.Activity,
		dispatcher: d.Dispatcher,
		rdb:        d.Redis,
		pushToWoo:  d.PushToWoo,
	}
}

func (s *productService) Create(ctx context.Context, actor model.Actor, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	barcode := strings.TrimSpace(req.Barcode)
	if err := s.checkBarcodeFree(ctx, barcode, ""); err != nil {
		return nil, err
	}
	names, err := loadCatalogNames(ctx, s.catalog)
	if err != nil {
		return nil, err
	}

	p := &model.Product{
		Name:          strings.TrimSpace(req.Name),
		Barcode:       barcode,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		TypeID:        req.TypeID,
		LocationID:    req.LocationID,
		ProviderID:    req.ProviderID,
		Quantity:      req.Quantity,
		MinQuantity:   req.MinQuantity,
		Cost:          toFloat(req.Cost),
		Price:         toFloat(req.Price),
		VATPercentage: toFloat(req.VATPercentage),
		WooCommerceID: req.WooCommerceID,
	}
	if err := checkReferences(names, p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.recordPriceChange(ctx, actor, p, 0, 0, model.PriceReasonCreated)
	s.activity.Record(ctx, actor, model.ActionCreate, model.EntityProduct, p.ID, p.Name,
		fmt.Sprintf("barcode %s, quantity %d", p.Barcode, p.Quantity))
	invalidateDashboard(ctx, s.rdb)

	log.Info().Str("product_id", p.ID).Str("barcode", p.Barcode).Msg("product created")
	return productToResponse(p, names), nil
}

func (s *productService) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	names, err := loadCatalogNames(ctx, s.catalog)
	if err != nil {
		return nil, err
	}
	return productToResponse(p, names), nil
}

func (s *productService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, notFound(err, "product with barcode", barcode)
	}
	names, err := loadCatalogNames(ctx, s.catalog)
	if err != nil {
		return nil, err
	}
	return productToResponse(p, names), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	names, err := loadCatalogNames(ctx, s.catalog)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, *productToResponse(&products[i], names))
	}
	return &dto.ProductListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *productService) Update(ctx context.Context, actor model.Actor, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	oldCost, oldPrice := p.Cost, p.Price

	if req.Barcode != nil {
		barcode := strings.TrimSpace(*req.Barcode)
		if barcode != p.Barcode {
			if err := s.checkBarcodeFree(ctx, barcode, p.ID); err != nil {
				return nil, err
			}
			p.Barcode = barcode
		}
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	setIf(&p.Description, req.Description)
	setIf(&p.CategoryID, req.CategoryID)
	setIf(&p.TypeID, req.TypeID)
	setIf(&p.LocationID, req.LocationID)
	setIf(&p.ProviderID, req.ProviderID)
	if req.MinQuantity != nil {
		p.MinQuantity = *req.MinQuantity
	}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return nil, fmt.Errorf("cost must not be negative: %w", ErrInvalidInput)
		}
		p.Cost = toFloat(*req.Cost)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("price must not be negative: %w", ErrInvalidInput)
		}
		p.Price = toFloat(*req.Price)
	}
	if req.VATPercentage != nil {
		if req.VATPercentage.IsNegative() || req.VATPercentage.GreaterThan(hundred) {
			return nil, fmt.Errorf("vat_percentage must be between 0 and 100: %w", ErrInvalidInput)
		}
		p.VATPercentage = toFloat(*req.VATPercentage)
	}
	if req.WooCommerceID != nil {
		if *req.WooCommerceID == 0 {
			p.WooCommerceID = nil
		} else {
			wooID := *req.WooCommerceID
			p.WooCommerceID = &wooID
		}
	}

	names, err := loadCatalogNames(ctx, s.catalog)
	if err != nil {
		return nil, err
	}
	if err := checkReferences(names, p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if p.Cost != oldCost || p.Price != oldPrice {
		s.recordPriceChange(ctx, actor, p, oldCost, oldPrice, model.PriceReasonManual)
	}
	s.activity.Record(ctx, actor, model.ActionUpdate, model.EntityProduct, p.ID, p.Name, "")
	invalidateDashboard(ctx, s.rdb)
	return productToResponse(p, names), nil
}

func (s *productService) Delete(ctx context.Context, actor model.Actor, id string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "product", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "product", id)
	}
	s.activity.Record(ctx, actor, model.ActionDelete, model.EntityProduct, p.ID, p.Name, "barcode "+p.Barcode)
	invalidateDashboard(ctx, s.rdb)
	return nil
}

func (s *productService) AdjustStock(ctx context.Context, actor model.Actor, id string, req dto.AdjustStockRequest) (*dto.StockAdjustmentResponse, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("delta must not be zero: %w", ErrInvalidInput)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = model.MovementAdjustment
	}

	updated, err := s.repo.AdjustQuantities(ctx, []repository.StockAdjustment{{
		ProductID: id,
		Delta:     req.Delta,
		Reason:    reason,
		UserID:    actor.UID,
	}})
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	p := &updated[0]
	before := p.Quantity - req.Delta

	s.activity.Record(ctx, actor, model.ActionAdjustStock, model.EntityProduct, p.ID, p.Name,
		fmt.Sprintf("%+d (%s): %d -> %d", req.Delta, reason, before, p.Quantity))
	s.enqueueStockPush(ctx, updated)
	invalidateDashboard(ctx, s.rdb)

	names, err := loadCatalogNames(ctx, s.catalog)
	if err != nil {
		return nil, err
	}
	return &dto.StockAdjustmentResponse{
		Product:        *productToResponse(p, names),
		Delta:          req.Delta,
		QuantityBefore: before,
		QuantityAfter:  p.Quantity,
	}, nil
}

func (s *productService) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names, err := loadCatalogNames(ctx, s.catalog)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0)
	for i := range all {
		if all[i].StockStatus() != model.StockOK {
			out = append(out, *productToResponse(&all[i], names))
		}
	}
	return out, nil
}

func (s *productService) PriceHistory(ctx context.Context, id string, limit int) (*dto.PriceHistoryListResponse, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err, "product", id)
	}
	entries, err := s.history.ListByProduct(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PriceHistoryItem, 0, len(entries))
	for _, h := range entries {
		items = append(items, dto.PriceHistoryItem{
			ID:            h.ID,
			ProductID:     h.ProductID,
			OldCost:       dec(h.OldCost),
			NewCost:       dec(h.NewCost),
			OldPrice:      dec(h.OldPrice),
			NewPrice:      dec(h.NewPrice),
			CostChangePct: ChangePct(dec(h.OldCost), dec(h.NewCost)),
			Reason:        h.Reason,
			ChangedBy:     h.ChangedBy,
			ChangedByName: h.ChangedByName,
			ChangedAt:     fmtTime(h.ChangedAt),
		})
	}
	return &dto.PriceHistoryListResponse{Data: items, Limit: limit}, nil
}

func (s *productService) StockMovements(ctx context.Context, filter dto.StockMovementFilter) ([]dto.StockMovementItem, error) {
	moves, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementItem, 0, len(moves))
	for _, m := range moves {
		out = append(out, dto.StockMovementItem{
			ID:             m.ID,
			ProductID:      m.ProductID,
			ProductName:    m.ProductName,
			Delta:          m.Delta,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			Reason:         m.Reason,
			ReferenceID:    m.ReferenceID,
			UserID:         m.UserID,
			CreatedAt:      fmtTime(m.CreatedAt),
		})
	}
	return out, nil
}

func (s *productService) checkBarcodeFree(ctx context.Context, barcode, selfID string) error {
	existing, err := s.repo.FindByBarcode(ctx, barcode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("barcode %s is already used by %q: %w", barcode, existing.Name, ErrConflict)
	}
	return nil
}

func (s *productService) recordPriceChange(ctx context.Context, actor model.Actor, p *model.Product, oldCost, oldPrice float64, reason string) {
	recordPriceChange(ctx, s.history, actor, p, oldCost, oldPrice, reason)
}

func (s *productService) enqueueStockPush(ctx context.Context, products []model.Product) {
	if s.pushToWoo {
		enqueueStockPushes(ctx, s.dispatcher, products)
	}
}

// recordPriceChange appends a price history entry. Best-effort like the
// activity log: the product write already succeeded.
func recordPriceChange(ctx context.Context, repo repository.PriceHistoryRepository, actor model.Actor, p *model.Product, oldCost, oldPrice float64, reason string) {
	h := &model.PriceHistory{
		ProductID:     p.ID,
		OldCost:       oldCost,
		NewCost:       p.Cost,
		OldPrice:      oldPrice,
		NewPrice:      p.Price,
		Reason:        reason,
		ChangedBy:     actor.UID,
		ChangedByName: actorName(actor),
	}
	if err := repo.Create(ctx, h); err != nil {
		log.Warn().Err(err).Str("product_id", p.ID).Msg("price history write failed")
	}
}

// enqueueStockPushes schedules a WooCommerce stock write for every linked product.
func enqueueStockPushes(ctx context.Context, d JobDispatcher, products []model.Product) {
	if d == nil {
		return
	}
	for i := range products {
		if !products[i].IsLinkedToWoo() {
			continue
		}
		if err := d.EnqueueStockPush(ctx, products[i].ID); err != nil {
			log.Warn().Err(err).Str("product_id", products[i].ID).Msg("enqueue stock push failed")
		}
	}
}

func checkReferences(names catalogNames, p *model.Product) error {
	refs := []struct {
		kind model.CatalogKind
		id   string
	}{
		{model.KindCategory, p.CategoryID},
		{model.KindProductType, p.TypeID},
		{model.KindLocation, p.LocationID},
		{model.KindProvider, p.ProviderID},
	}
	for _, r := range refs {
		if r.id == "" {
			continue
		}
		if _, ok := names[r.kind][r.id]; !ok {
			return fmt.Errorf("unknown %s id %s: %w", r.kind, r.id, ErrInvalidInput)
		}
	}
	return nil
}

func productToResponse(p *model.Product, names catalogNames) *dto.ProductResponse {
	cost, price, vat := dec(p.Cost), dec(p.Price), dec(p.VATPercentage)
	return &dto.ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Barcode:         p.Barcode,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
		CategoryName:    names.name(model.KindCategory, p.CategoryID),
		TypeID:          p.TypeID,
		TypeName:        names.name(model.KindProductType, p.TypeID),
		LocationID:      p.LocationID,
		LocationName:    names.name(model.KindLocation, p.LocationID),
		ProviderID:      p.ProviderID,
		ProviderName:    names.name(model.KindProvider, p.ProviderID),
		Quantity:        p.Quantity,
		MinQuantity:     p.MinQuantity,
		Cost:            cost,
		Price:           price,
		VATPercentage:   vat,
		PriceWithoutVAT: PriceWithoutVAT(price, vat),
		VATAmount:       VATAmount(price, vat),
		MarginPct:       MarginPct(cost, price, vat),
		StockStatus:     p.StockStatus(),
		WooCommerceID:   p.WooCommerceID,
		CreatedAt:       fmtTime(p.CreatedAt),
		UpdatedAt:       fmtTime(p.UpdatedAt),
	}
}
