package router

import (
	"time"

	"shopinventory/internal/config"
	"shopinventory/internal/handler"
	"shopinventory/internal/infra"
	"shopinventory/internal/middleware"
	"shopinventory/internal/model"
	"shopinventory/internal/repository"
	"shopinventory/internal/service"
	"shopinventory/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil; the SKU cache and async jobs are then skipped.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	if cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler(!cfg.IsProduction()))
	r.Use(middleware.RateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))

	// ── Repositories ─────────────────────────────────────────────────────────
	txr := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	clientRepo := repository.NewClientRepository(db)
	optionRepo := repository.NewFieldOptionRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// One lock table shared by every stock-mutating service.
	locks := infra.NewKeyedMutex()

	var dispatcher service.JobDispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	authSvc := service.NewAuthService(userRepo, cfg)
	ledgerSvc := service.NewLedgerService(productRepo, ledgerRepo, txr, locks, dispatcher)
	productSvc := service.NewProductService(productRepo, supplierRepo, ledgerSvc, txr, locks, rdb, service.ProductOptions{
		DefaultReorderThreshold: cfg.DefaultReorderThreshold,
		CacheTTL:                time.Duration(cfg.SKUCacheTTLMinutes) * time.Minute,
	})
	saleSvc := service.NewSaleService(saleRepo, clientRepo, productRepo, ledgerRepo, ledgerSvc, txr, locks, dispatcher)
	supplierSvc := service.NewSupplierService(supplierRepo)
	optionSvc := service.NewFieldOptionService(optionRepo)
	clientSvc := service.NewClientService(clientRepo, saleRepo)
	reportSvc := service.NewReportService(productRepo, supplierRepo, clientRepo, saleRepo, ledgerRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	optionsH := handler.NewFieldOptionsHandler(optionSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	transactionsH := handler.NewTransactionsHandler(ledgerSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health)
	r.GET("/health/ready", handler.Ready(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes: any authenticated user, destructive ones admin only
	admin := middleware.RequireRole(model.RoleAdmin)
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		users := v1.Group("/users", admin)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
		}

		products := v1.Group("/products")
		{
			products.GET("", productsH.List)
			products.POST("", productsH.Create)
			products.POST("/import", productsH.Import)
			products.GET("/sku/:sku", productsH.GetBySKU)
			products.GET("/:id", productsH.Get)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", admin, productsH.Delete)
		}
		v1.GET("/fields/:field", productsH.DistinctValues)

		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("", suppliersH.List)
			suppliers.POST("", suppliersH.Create)
			suppliers.GET("/:id", suppliersH.Get)
			suppliers.PUT("/:id", suppliersH.Update)
			suppliers.PATCH("/:id/activate", suppliersH.Activate)
			suppliers.PATCH("/:id/deactivate", suppliersH.Deactivate)
		}

		options := v1.Group("/field-options/:type")
		{
			options.GET("", optionsH.List)
			options.POST("", optionsH.Create)
			options.PATCH("/:id/activate", optionsH.Activate)
			options.PATCH("/:id/deactivate", optionsH.Deactivate)
		}

		clients := v1.Group("/clients")
		{
			clients.GET("", clientsH.List)
			clients.POST("", clientsH.Create)
			clients.GET("/:id", clientsH.Get)
			clients.PUT("/:id", clientsH.Update)
			clients.DELETE("/:id", admin, clientsH.Delete)
		}

		// Sales are immutable once recorded: no PUT or DELETE.
		sales := v1.Group("/sales")
		{
			sales.GET("", salesH.List)
			sales.POST("", salesH.Create)
			sales.GET("/:id", salesH.Get)
			sales.GET("/:id/receipt", salesH.Receipt)
		}

		v1.GET("/transactions", transactionsH.List)
		v1.POST("/transactions", transactionsH.Create)

		v1.GET("/alerts/low-stock", reportsH.LowStock)
		v1.GET("/summary", reportsH.Overview)

		reports := v1.Group("/reports")
		{
			reports.GET("/stock-levels", reportsH.StockLevels)
			reports.GET("/inventory-value", reportsH.InventoryValue)
			reports.GET("/low-stock", reportsH.LowStock)
			reports.GET("/sales-summary", reportsH.SalesSummary)
			reports.GET("/suppliers", reportsH.Suppliers)
			reports.GET("/clients", reportsH.Clients)
			reports.GET("/ledger-drift", admin, reportsH.LedgerDrift)
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
