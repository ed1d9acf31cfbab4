package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	currencyapp "github.com/contaro/backend/internal/application/currency"
	receiptapp "github.com/contaro/backend/internal/application/receipt"
	stockapp "github.com/contaro/backend/internal/application/stock"
	transferapp "github.com/contaro/backend/internal/application/transfer"
	warehouseapp "github.com/contaro/backend/internal/application/warehouse"
	"github.com/contaro/backend/internal/infrastructure/cache"
	"github.com/contaro/backend/internal/infrastructure/config"
	"github.com/contaro/backend/internal/infrastructure/event"
	"github.com/contaro/backend/internal/infrastructure/logger"
	"github.com/contaro/backend/internal/infrastructure/persistence"
	"github.com/contaro/backend/internal/infrastructure/telemetry"
	"github.com/contaro/backend/internal/interfaces/http/handler"
	"github.com/contaro/backend/internal/interfaces/http/middleware"
	"github.com/contaro/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Contaro Inventory Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize tracing (if enabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database query tracing
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := db.DB.Use(dbTracing); err != nil {
			log.Fatal("Failed to register DB tracing plugin", zap.Error(err))
		}
		log.Info("Database tracing enabled",
			zap.Duration("slow_query_threshold", cfg.Telemetry.DBSlowQueryThresh),
		)
	}

	// Initialize repositories
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	balanceRepo := persistence.NewGormBalanceRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Exchange rate provider: configured static rates, optionally fronted
	// by a Redis read-through cache when a Redis host is configured.
	var rateProvider currencyapp.RateProvider
	staticRates, err := cache.NewConfiguredRateProvider(cfg.Currency.Rates)
	if err != nil {
		log.Fatal("Failed to parse configured exchange rates", zap.Error(err))
	}
	rateProvider = staticRates
	if cfg.Redis.Host != "" {
		redisCache, err := cache.NewRedisRateCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, staticRates, cfg.Currency.RateCacheTTL)
		if err != nil {
			log.Warn("Redis rate cache unavailable, using static rates", zap.Error(err))
		} else {
			defer func() {
				if err := redisCache.Close(); err != nil {
					log.Error("Error closing Redis rate cache", zap.Error(err))
				}
			}()
			rateProvider = redisCache
			log.Info("Redis rate cache enabled",
				zap.String("host", cfg.Redis.Host),
				zap.Duration("ttl", cfg.Currency.RateCacheTTL),
			)
		}
	}
	currencyService := currencyapp.NewService(rateProvider)

	// Posting point decides when receipts move stock
	postingPoint := receiptapp.PostingPoint(cfg.Posting.Point)
	if !postingPoint.IsValid() {
		log.Fatal("Invalid posting point", zap.String("point", cfg.Posting.Point))
	}

	// Initialize application services
	warehouseService := warehouseapp.NewService(warehouseRepo)
	stockService := stockapp.NewService(balanceRepo, movementRepo, txScope)
	receiptService := receiptapp.NewService(receiptRepo, txScope, currencyService, postingPoint)
	transferService := transferapp.NewService(transferRepo, txScope, currencyService)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	warehouseService.SetEventPublisher(eventBus)
	stockService.SetEventPublisher(eventBus)
	receiptService.SetEventPublisher(eventBus)
	transferService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	stockHandler := handler.NewStockHandler(stockService)
	receiptHandler := handler.NewReceiptHandler(receiptService)
	transferHandler := handler.NewTransferHandler(transferService)
	currencyHandler := handler.NewCurrencyHandler(currencyService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Distributed tracing spans (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Company scoping for API routes. Every request must carry an
	// X-Company-ID header; system and ping endpoints stay open.
	r.Use(middleware.CompanyMiddlewareWithConfig(middleware.CompanyMiddlewareConfig{
		SkipPaths: []string{
			"/health",
			"/api/v1/ping",
			"/api/v1/system",
		},
		Required: true,
		Logger:   log,
	}))

	// Warehouse registry
	warehouseRoutes := router.NewDomainGroup("warehouses", "/warehouses")
	warehouseRoutes.POST("", warehouseHandler.Create)
	warehouseRoutes.GET("", warehouseHandler.List)
	warehouseRoutes.GET("/stats", warehouseHandler.Stats)
	warehouseRoutes.GET("/:id", warehouseHandler.GetByID)
	warehouseRoutes.GET("/code/:code", warehouseHandler.GetByCode)
	warehouseRoutes.PUT("/:id", warehouseHandler.Update)
	warehouseRoutes.POST("/:id/deactivate", warehouseHandler.Deactivate)
	warehouseRoutes.POST("/:id/reactivate", warehouseHandler.Reactivate)

	// Stock ledger: balances, movements, reservations, adjustments
	stockRoutes := router.NewDomainGroup("stock", "/stock")
	stockRoutes.GET("/warehouses/:warehouse_id/balances", stockHandler.ListByWarehouse)
	stockRoutes.GET("/warehouses/:warehouse_id/balances/:product_id", stockHandler.GetBalance)
	stockRoutes.GET("/products/:product_id/balances", stockHandler.ListByProduct)
	stockRoutes.GET("/movements", stockHandler.ListMovements)
	stockRoutes.GET("/movements/source/:source_type/:source_id", stockHandler.ListMovementsBySource)
	stockRoutes.GET("/expiring", stockHandler.ListExpiring)
	stockRoutes.POST("/reservations", stockHandler.Reserve)
	stockRoutes.POST("/releases", stockHandler.Release)
	stockRoutes.POST("/adjustments", stockHandler.Adjust)

	// Goods receipt (NIR) workflow
	receiptRoutes := router.NewDomainGroup("receipts", "/receipts")
	receiptRoutes.POST("", receiptHandler.Create)
	receiptRoutes.GET("", receiptHandler.List)
	receiptRoutes.GET("/:id", receiptHandler.GetByID)
	receiptRoutes.POST("/:id/submit", receiptHandler.Submit)
	receiptRoutes.POST("/:id/approve", receiptHandler.Approve)
	receiptRoutes.POST("/:id/reject", receiptHandler.Reject)

	// Inter-warehouse transfer workflow
	transferRoutes := router.NewDomainGroup("transfers", "/transfers")
	transferRoutes.POST("", transferHandler.Create)
	transferRoutes.GET("", transferHandler.List)
	transferRoutes.GET("/:id", transferHandler.GetByID)
	transferRoutes.POST("/:id/issue", transferHandler.Issue)
	transferRoutes.POST("/:id/in-transit", transferHandler.MarkInTransit)
	transferRoutes.POST("/:id/receive", transferHandler.Receive)
	transferRoutes.POST("/:id/cancel", transferHandler.Cancel)

	// Currency rates and conversion
	currencyRoutes := router.NewDomainGroup("currency", "/currency")
	currencyRoutes.GET("/rates/:code", currencyHandler.GetRate)
	currencyRoutes.POST("/convert", currencyHandler.Convert)

	// System routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(warehouseRoutes).
		Register(stockRoutes).
		Register(receiptRoutes).
		Register(transferRoutes).
		Register(currencyRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
