package router

import (
	"time"

	_ "github.com/brehash/kscinventory-sub002/docs"
	"github.com/brehash/kscinventory-sub002/internal/config"
	"github.com/brehash/kscinventory-sub002/internal/handler"
	"github.com/brehash/kscinventory-sub002/internal/infra"
	"github.com/brehash/kscinventory-sub002/internal/middleware"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
)

// Services is everything the HTTP layer calls into. cmd/server builds it.
type Services struct {
	Products  service.ProductService
	Catalog   service.CatalogService
	Orders    service.OrderService
	Dashboard service.DashboardService
	Activity  service.ActivityService
	Sync      service.SyncService
	Reports   service.ReportService
	Users     service.UserService
}

type Deps struct {
	Config      *config.Config
	Verifier    middleware.TokenVerifier
	Services    Services
	Health      map[string]handler.HealthCheck
	WooBreaker  *infra.CircuitBreaker // nil when WooCommerce is disabled
	RateLimiter *middleware.RateLimiter
	Jobs        handler.JobAdmin // nil hides the /v1/jobs routes
}

// catalogPaths maps URL segments onto catalog kinds.
var catalogPaths = map[string]model.CatalogKind{
	"categories":    model.KindCategory,
	"product-types": model.KindProductType,
	"locations":     model.KindLocation,
	"providers":     model.KindProvider,
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Firestore/Redis
func New(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	rl := d.RateLimiter
	if rl == nil {
		rl = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	}
	r.Use(rl.Middleware())

	svc := d.Services

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductsHandler(svc.Products)
	ordersH := handler.NewOrdersHandler(svc.Orders)
	dashboardH := handler.NewDashboardHandler(svc.Dashboard, svc.Activity)
	syncH := handler.NewSyncHandler(svc.Sync)
	reportsH := handler.NewReportsHandler(svc.Reports)
	usersH := handler.NewUsersHandler(svc.Users)

	manager := middleware.RequireRole(model.RoleManager, model.RoleAdmin)
	admin := middleware.RequireRole(model.RoleAdmin)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.Health, d.WooBreaker))
	// Authenticated by HMAC signature rather than a Firebase token
	r.POST("/webhooks/woocommerce/orders", syncH.Webhook)

	v1 := r.Group("/v1", middleware.FirebaseAuth(d.Verifier))
	{
		v1.GET("/me", usersH.Me)
		v1.GET("/dashboard", dashboardH.Stats)
		v1.GET("/activity", dashboardH.Activity)
		v1.GET("/stock-movements", productsH.StockMovements)

		prods := v1.Group("/products")
		{
			prods.GET("", productsH.List)
			prods.POST("", manager, productsH.Create)
			prods.GET("/low-stock", productsH.LowStock)
			prods.GET("/export.csv", reportsH.ExportCSV)
			prods.POST("/import", manager, reportsH.ImportCSV)
			prods.GET("/by-barcode/:barcode", productsH.GetByBarcode)
			prods.GET("/:id", productsH.Get)
			prods.PUT("/:id", manager, productsH.Update)
			prods.DELETE("/:id", manager, productsH.Delete)
			prods.PATCH("/:id/stock", productsH.AdjustStock)
			prods.GET("/:id/price-history", productsH.PriceHistory)
			prods.POST("/:id/push-stock", manager, syncH.PushStock)
		}

		for path, kind := range catalogPaths {
			h := handler.NewCatalogHandler(svc.Catalog, kind)
			g := v1.Group("/" + path)
			g.GET("", h.List)
			g.POST("", manager, h.Create)
			g.GET("/:id", h.Get)
			g.PUT("/:id", manager, h.Update)
			g.DELETE("/:id", manager, h.Delete)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", ordersH.List)
			orders.POST("", manager, ordersH.Create)
			orders.GET("/:id", ordersH.Get)
			orders.PUT("/:id", manager, ordersH.Update)
			orders.DELETE("/:id", manager, ordersH.Delete)
			orders.PATCH("/:id/status", ordersH.UpdateStatus)
			orders.GET("/:id/pdf", ordersH.PDF)
		}

		sync := v1.Group("/sync")
		{
			sync.POST("/orders", manager, syncH.SyncOrders)
			sync.POST("/products", manager, syncH.MapProducts)
			sync.GET("/status", syncH.Status)
		}

		v1.POST("/reports/low-stock-digest", manager, reportsH.LowStockDigest)

		users := v1.Group("/users", admin)
		{
			users.GET("", usersH.List)
			users.PUT("/:uid/role", usersH.SetRole)
		}

		if d.Jobs != nil {
			jobsH := handler.NewJobsHandler(d.Jobs)
			jobs := v1.Group("/jobs", admin)
			jobs.GET("", jobsH.Stats)
			jobs.POST("/:queue/replay", jobsH.Replay)
		}
	}

	// Swagger UI, outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
