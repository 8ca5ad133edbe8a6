package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CSV row error codes.
const (
	CSVBarcodeMissing   = "BARCODE_MISSING"
	CSVNameMissing      = "NAME_MISSING"
	CSVPriceNotNumber   = "PRICE_NOT_NUMBER"
	CSVPriceNegative    = "PRICE_NEGATIVE"
	CSVQuantityNegative = "QUANTITY_NEGATIVE"
	CSVInvalidField     = "INVALID_FIELD"
	CSVRowFormat        = "ROW_FORMAT"
)

// rowValidator applies the API's request rules to imported rows.
var rowValidator = dto.NewValidator()

// ReportService handles bulk product import/export and the low-stock digest.
type ReportService interface {
	ExportProductsCSV(ctx context.Context, w io.Writer) error
	ImportProductsCSV(ctx context.Context, actor model.Actor, r io.Reader) (*dto.CSVImportResponse, error)
	// LowStockDigest emails the low and out-of-stock list to the alert
	// address and returns how many products it listed.
	LowStockDigest(ctx context.Context) (int, error)
}

type ReportServiceDeps struct {
	Products   repository.ProductRepository
	Catalog    repository.CatalogRepository
	History    repository.PriceHistoryRepository
	Activity   ActivityService
	Dispatcher JobDispatcher
	Redis      *redis.Client
	AlertEmail string
	PushToWoo  bool
}

type reportService struct {
	products   repository.ProductRepository
	catalog    repository.CatalogRepository
	history    repository.PriceHistoryRepository
	activity   ActivityService
	dispatcher JobDispatcher
	rdb        *redis.Client
	alertEmail string
	pushToWoo  bool
}

func NewReportService(d ReportServiceDeps) ReportService {
	return &reportService{
		products:   d.Products,
		catalog:    d.Catalog,
		history:    d.History,
		activity:   d.Activity,
		dispatcher: d.Dispatcher,
		rdb:        d.Redis,
		alertEmail: d.AlertEmail,
		pushToWoo:  d.PushToWoo,
	}
}

func (s *reportService) ExportProductsCSV(ctx context.Context, w io.Writer) error {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return err
	}
	names, err := loadCatalogNames(ctx, s.catalog)
	if err != nil {
		return err
	}
	rows := make([]*dto.ProductCSVRow, 0, len(products))
	for i := range products {
		p := &products[i]
		row := &dto.ProductCSVRow{
			Barcode:       p.Barcode,
			Name:          p.Name,
			Description:   p.Description,
			Category:      names.name(model.KindCategory, p.CategoryID),
			Type:          names.name(model.KindProductType, p.TypeID),
			Location:      names.name(model.KindLocation, p.LocationID),
			Provider:      names.name(model.KindProvider, p.ProviderID),
			Quantity:      strconv.Itoa(p.Quantity),
			MinQuantity:   strconv.Itoa(p.MinQuantity),
			Cost:          dec(p.Cost).StringFixed(2),
			Price:         dec(p.Price).StringFixed(2),
			VATPercentage: dec(p.VATPercentage).String(),
		}
		if p.WooCommerceID != nil {
			row.WooCommerceID = strconv.FormatInt(*p.WooCommerceID, 10)
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(rows, w)
}

// ── ImportProductsCSV ─────────────────────────────────────────────────────────
// Upserts by barcode. Empty cells keep the current value of an existing
// product. Lookup names that do not exist yet are created. Quantity changes
// go through the stock ledger like any other adjustment.

func (s *reportService) ImportProductsCSV(ctx context.Context, actor model.Actor, r io.Reader) (*dto.CSVImportResponse, error) {
	var rows []*dto.ProductCSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("read csv: %v: %w", err, ErrInvalidInput)
	}

	all, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byBarcode := make(map[string]*model.Product, len(all))
	for i := range all {
		byBarcode[all[i].Barcode] = &all[i]
	}
	lookups, err := newLookupResolver(ctx, s.catalog)
	if err != nil {
		return nil, err
	}

	resp := &dto.CSVImportResponse{TotalRows: len(rows), ErrorRows: []dto.CSVErrorRow{}}
	var pushed []model.Product
	for i, row := range rows {
		line := i + 2 // header is line 1
		fail := func(code, reason string) {
			resp.Errors++
			resp.ErrorRows = append(resp.ErrorRows, dto.CSVErrorRow{
				Row: line, Barcode: row.Barcode, Name: row.Name, ErrorCode: code, Reason: reason,
			})
		}

		parsed, code, reason := parseCSVRow(row)
		if code != "" {
			fail(code, reason)
			continue
		}
		existing := byBarcode[parsed.barcode]
		if existing == nil && parsed.name == "" {
			fail(CSVNameMissing, "name is required for new products")
			continue
		}
		if reason := parsed.validate(existing == nil); reason != "" {
			fail(CSVInvalidField, reason)
			continue
		}

		refs, err := lookups.resolve(ctx, row)
		if errors.Is(err, errInvalidLookup) {
			fail(CSVInvalidField, err.Error())
			continue
		}
		if err != nil {
			fail(CSVRowFormat, err.Error())
			continue
		}

		if existing == nil {
			p := parsed.newProduct(refs)
			if err := s.products.Create(ctx, p); err != nil {
				fail(CSVRowFormat, "could not save product")
				log.Error().Err(err).Int("row", line).Msg("csv import: create failed")
				continue
			}
			recordPriceChange(ctx, s.history, actor, p, 0, 0, model.PriceReasonCSVImport)
			byBarcode[p.Barcode] = p
			resp.Created++
			resp.Processed++
			continue
		}

		// Fields and quantity are saved together against the stored
		// quantity, so a failed row leaves the product untouched.
		updated := *existing
		parsed.applyTo(&updated, refs)
		moved, err := s.products.SaveWithQuantity(ctx, &updated, parsed.quantity, model.MovementCSVImport, actor.UID)
		if err != nil {
			fail(CSVRowFormat, "could not save product")
			log.Error().Err(err).Int("row", line).Msg("csv import: update failed")
			continue
		}
		if updated.Cost != existing.Cost || updated.Price != existing.Price {
			recordPriceChange(ctx, s.history, actor, &updated, existing.Cost, existing.Price, model.PriceReasonCSVImport)
		}
		if moved {
			pushed = append(pushed, updated)
		}
		*existing = updated
		resp.Updated++
		resp.Processed++
	}

	if s.pushToWoo {
		enqueueStockPushes(ctx, s.dispatcher, pushed)
	}
	if resp.Processed > 0 {
		invalidateDashboard(ctx, s.rdb)
	}
	s.activity.Record(ctx, actor, model.ActionImport, model.EntityProduct, "", "CSV import",
		fmt.Sprintf("%d rows: %d created, %d updated, %d errors", resp.TotalRows, resp.Created, resp.Updated, resp.Errors))
	return resp, nil
}

func (s *reportService) LowStockDigest(ctx context.Context) (int, error) {
	if s.alertEmail == "" {
		return 0, fmt.Errorf("ALERT_EMAIL is not configured: %w", ErrInvalidInput)
	}
	if s.dispatcher == nil {
		return 0, fmt.Errorf("no job dispatcher: %w", ErrInvalidInput)
	}
	all, err := s.products.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	var low, out []model.Product
	for _, p := range all {
		switch p.StockStatus() {
		case model.StockLow:
			low = append(low, p)
		case model.StockOut:
			out = append(out, p)
		}
	}
	n := len(low) + len(out)
	if n == 0 {
		log.Info().Msg("low stock digest: nothing to report")
		return 0, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d product(s) need restocking.\n", n)
	writeDigestSection(&b, "Out of stock", out)
	writeDigestSection(&b, "Low stock", low)

	subject := fmt.Sprintf("Low stock: %d out, %d low", len(out), len(low))
	if err := s.dispatcher.EnqueueEmail(ctx, []string{s.alertEmail}, subject, b.String()); err != nil {
		return 0, fmt.Errorf("enqueue digest email: %w", err)
	}
	return n, nil
}

func writeDigestSection(b *strings.Builder, title string, products []model.Product) {
	if len(products) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d)\n", title, len(products))
	for _, p := range products {
		fmt.Fprintf(b, "  %-16s %-40s qty %4d  min %4d\n", p.Barcode, p.Name, p.Quantity, p.MinQuantity)
	}
}

// csvProduct is a validated import row. nil pointers mean "keep current".
type csvProduct struct {
	barcode     string
	name        string
	description string
	quantity    *int
	minQuantity *int
	cost        *decimal.Decimal
	price       *decimal.Decimal
	vat         *decimal.Decimal
	wooID       *int64
}

func parseCSVRow(row *dto.ProductCSVRow) (*csvProduct, string, string) {
	p := &csvProduct{
		barcode:     strings.TrimSpace(row.Barcode),
		name:        strings.TrimSpace(row.Name),
		description: strings.TrimSpace(row.Description),
	}
	if p.barcode == "" {
		return nil, CSVBarcodeMissing, "barcode is required"
	}

	var err error
	if p.quantity, err = optInt(row.Quantity); err != nil {
		return nil, CSVRowFormat, "quantity is not a whole number"
	}
	if p.quantity != nil && *p.quantity < 0 {
		return nil, CSVQuantityNegative, "quantity must not be negative"
	}
	if p.minQuantity, err = optInt(row.MinQuantity); err != nil {
		return nil, CSVRowFormat, "min_quantity is not a whole number"
	}
	if p.minQuantity != nil && *p.minQuantity < 0 {
		return nil, CSVQuantityNegative, "min_quantity must not be negative"
	}
	for _, f := range []struct {
		label string
		raw   string
		dst   **decimal.Decimal
	}{
		{"cost", row.Cost, &p.cost},
		{"price", row.Price, &p.price},
		{"vat_percentage", row.VATPercentage, &p.vat},
	} {
		v, err := optDecimal(f.raw)
		if err != nil {
			return nil, CSVPriceNotNumber, f.label + " is not a number"
		}
		if v != nil && v.IsNegative() {
			return nil, CSVPriceNegative, f.label + " must not be negative"
		}
		*f.dst = v
	}
	if raw := strings.TrimSpace(row.WooCommerceID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return nil, CSVRowFormat, "woocommerce_id is not a valid id"
		}
		p.wooID = &id
	}
	return p, "", ""
}

// validate runs the product request rules over the row: the create rules
// for a new product, the partial update rules otherwise. It returns a reason
// naming the first failing column, or "".
func (c *csvProduct) validate(isNew bool) string {
	var req interface{}
	if isNew {
		create := dto.CreateProductRequest{
			Name:          c.name,
			Barcode:       c.barcode,
			Description:   c.description,
			WooCommerceID: c.wooID,
		}
		if c.quantity != nil {
			create.Quantity = *c.quantity
		}
		if c.minQuantity != nil {
			create.MinQuantity = *c.minQuantity
		}
		if c.cost != nil {
			create.Cost = *c.cost
		}
		if c.price != nil {
			create.Price = *c.price
		}
		if c.vat != nil {
			create.VATPercentage = *c.vat
		}
		req = create
	} else {
		update := dto.UpdateProductRequest{
			MinQuantity:   c.minQuantity,
			Cost:          c.cost,
			Price:         c.price,
			VATPercentage: c.vat,
			WooCommerceID: c.wooID,
		}
		if c.name != "" {
			update.Name = &c.name
		}
		if c.description != "" {
			update.Description = &c.description
		}
		req = update
	}
	return validationReason(rowValidator.Struct(req))
}

// validationReason renders the first failing rule as "<field> fails <rule>".
func validationReason(err error) string {
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return fe.Field() + " fails " + rule
}

func (c *csvProduct) newProduct(refs lookupRefs) *model.Product {
	p := &model.Product{Barcode: c.barcode}
	c.applyTo(p, refs)
	if c.quantity != nil {
		p.Quantity = *c.quantity
	}
	return p
}

// applyTo copies every field except quantity, which callers adjust through
// the stock ledger.
func (c *csvProduct) applyTo(p *model.Product, refs lookupRefs) {
	if c.name != "" {
		p.Name = c.name
	}
	if c.description != "" {
		p.Description = c.description
	}
	if c.minQuantity != nil {
		p.MinQuantity = *c.minQuantity
	}
	if c.cost != nil {
		p.Cost = toFloat(*c.cost)
	}
	if c.price != nil {
		p.Price = toFloat(*c.price)
	}
	if c.vat != nil {
		p.VATPercentage = toFloat(*c.vat)
	}
	if c.wooID != nil {
		if *c.wooID == 0 {
			p.WooCommerceID = nil
		} else {
			id := *c.wooID
			p.WooCommerceID = &id
		}
	}
	for kind, id := range refs {
		switch kind {
		case model.KindCategory:
			p.CategoryID = id
		case model.KindProductType:
			p.TypeID = id
		case model.KindLocation:
			p.LocationID = id
		case model.KindProvider:
			p.ProviderID = id
		}
	}
}

func optInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// lookupRefs holds the lookup ids named on one CSV row.
type lookupRefs map[model.CatalogKind]string

// lookupResolver maps lookup names to ids, creating missing entries.
type lookupResolver struct {
	repo  repository.CatalogRepository
	byKey map[model.CatalogKind]map[string]string
}

func newLookupResolver(ctx context.Context, repo repository.CatalogRepository) (*lookupResolver, error) {
	names, err := loadCatalogNames(ctx, repo)
	if err != nil {
		return nil, err
	}
	lr := &lookupResolver{repo: repo, byKey: make(map[model.CatalogKind]map[string]string)}
	for kind, m := range names {
		idx := make(map[string]string, len(m))
		for id, name := range m {
			idx[strings.ToLower(strings.TrimSpace(name))] = id
		}
		lr.byKey[kind] = idx
	}
	return lr, nil
}

// errInvalidLookup marks a lookup name that cannot be created.
var errInvalidLookup = errors.New("invalid lookup name")

// resolve maps the row's lookup names to ids. Every missing name is checked
// against the catalog rules before any of them is created.
func (lr *lookupResolver) resolve(ctx context.Context, row *dto.ProductCSVRow) (lookupRefs, error) {
	type lookup struct {
		kind model.CatalogKind
		name string
	}
	refs := make(lookupRefs)
	var missing []lookup
	for _, l := range []lookup{
		{model.KindCategory, row.Category},
		{model.KindProductType, row.Type},
		{model.KindLocation, row.Location},
		{model.KindProvider, row.Provider},
	} {
		l.name = strings.TrimSpace(l.name)
		if l.name == "" {
			continue
		}
		if id, ok := lr.byKey[l.kind][strings.ToLower(l.name)]; ok {
			refs[l.kind] = id
			continue
		}
		if reason := validationReason(rowValidator.Struct(dto.CreateCatalogRequest{Name: l.name})); reason != "" {
			return nil, fmt.Errorf("%s %q: %s: %w", l.kind, l.name, reason, errInvalidLookup)
		}
		missing = append(missing, l)
	}

	for _, l := range missing {
		e := &model.CatalogEntry{Name: l.name}
		if err := lr.repo.Create(ctx, l.kind, e); err != nil {
			return nil, fmt.Errorf("could not create %s %q", l.kind, l.name)
		}
		if lr.byKey[l.kind] == nil {
			lr.byKey[l.kind] = make(map[string]string)
		}
		lr.byKey[l.kind][strings.ToLower(l.name)] = e.ID
		refs[l.kind] = e.ID
	}
	return refs, nil
}
