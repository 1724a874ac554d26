package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fabrictrade/backend/internal/application/analytics"
	"github.com/fabrictrade/backend/internal/application/assistant"
	billingapp "github.com/fabrictrade/backend/internal/application/billing"
	catalogapp "github.com/fabrictrade/backend/internal/application/catalog"
	identityapp "github.com/fabrictrade/backend/internal/application/identity"
	"github.com/fabrictrade/backend/internal/application/invoice"
	partnerapp "github.com/fabrictrade/backend/internal/application/partner"
	payreqapp "github.com/fabrictrade/backend/internal/application/payreq"
	tradeapp "github.com/fabrictrade/backend/internal/application/trade"
	"github.com/fabrictrade/backend/internal/infrastructure/ai"
	"github.com/fabrictrade/backend/internal/infrastructure/auth"
	"github.com/fabrictrade/backend/internal/infrastructure/cache"
	"github.com/fabrictrade/backend/internal/infrastructure/config"
	"github.com/fabrictrade/backend/internal/infrastructure/event"
	"github.com/fabrictrade/backend/internal/infrastructure/logger"
	"github.com/fabrictrade/backend/internal/infrastructure/migration"
	"github.com/fabrictrade/backend/internal/infrastructure/persistence"
	"github.com/fabrictrade/backend/internal/infrastructure/printing"
	"github.com/fabrictrade/backend/internal/infrastructure/storage"
	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/fabrictrade/backend/internal/interfaces/http/handler"
	"github.com/fabrictrade/backend/internal/interfaces/http/middleware"
	"github.com/fabrictrade/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/fabrictrade/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Fabric Trade API
//	@version		1.0
//	@description	Catalog, ordering, billing and payment collection for a fabric wholesaler.
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		LinkProfiles:      cfg.Telemetry.ProfilerEnabled,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	log := tel.Bridge(baseLog, cfg.Telemetry.ServiceName, level)
	defer func() {
		_ = log.Sync()
	}()

	profiler, err := telemetry.StartProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilerEnabled,
		ServerAddress:     cfg.Telemetry.ProfilerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilerUser,
		BasicAuthPassword: cfg.Telemetry.ProfilerPassword,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", zap.Error(err))
	}

	log.Info("Starting Fabric Trade backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabase(ctx, &cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentDB(db.DB, cfg.Database.DBName, log); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}
	if err := migrate(db, log); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs idempotency keys and the revocation list when enabled
	var (
		redisClient *redis.Client
		idem        billingapp.IdempotencyStore
		revocations auth.RevocationList
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		idem = cache.NewRedisIdempotencyStore(redisClient, "ft:idem:")
		revocations = auth.NewRedisRevocationList(redisClient)
	} else {
		log.Warn("Redis disabled, idempotency keys and revoked tokens are kept in process memory")
		idem = cache.NewMemoryIdempotencyStore(cache.DefaultMemoryKeys)
		revocations = auth.NewMemoryRevocationList()
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	paymentRequestRepo := persistence.NewGormPaymentRequestRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Committed bill events feed the ledger log
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLedgerLogHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Payment recording
	paymentMetrics, err := telemetry.NewPaymentMetrics(telemetry.Meter("fabrictrade/billing"))
	if err != nil {
		log.Warn("Payment metrics unavailable", zap.Error(err))
	}
	recorder := billingapp.NewRecorder(txScope, billingapp.RecorderConfig{
		MaxAttempts:       cfg.Payment.MaxAttempts,
		RetryBackoff:      cfg.Payment.RetryBackoff,
		RejectOverpayment: cfg.Payment.RejectOverpayment,
		Events:            eventBus,
	}, paymentMetrics, log)

	// Invoices
	templates, err := printing.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to load invoice templates", zap.Error(err))
	}
	var pdf invoice.PDFRenderer
	if cfg.Printing.Enabled {
		renderer := printing.NewPDFRenderer(cfg.Printing, log)
		defer func() {
			_ = renderer.Close()
		}()
		pdf = renderer
	}
	var store invoice.ObjectStore
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Storage(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to configure invoice storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Invoice bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		store = s3
	}

	// Assistant
	var model assistant.Model
	if cfg.Assistant.APIKey != "" {
		client, err := ai.NewOpenAIClient(cfg.Assistant, log)
		if err != nil {
			log.Fatal("Failed to configure assistant", zap.Error(err))
		}
		model = client
	}

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, customerRepo, jwtService, revocations, log)
	productService := catalogapp.NewProductService(productRepo, log)
	customerService := partnerapp.NewCustomerService(customerRepo, billRepo, txScope, log)
	orderService := tradeapp.NewOrderService(orderRepo, txScope, decimal.NewFromFloat(cfg.Billing.TaxRatePercent), log)
	orderService.SetEventPublisher(eventBus)
	billService := billingapp.NewBillService(billRepo, paymentRepo, customerRepo, log)
	billService.SetEventPublisher(eventBus)
	paymentService := billingapp.NewPaymentService(recorder, paymentRepo, idem, cfg.Payment.IdempotencyTTL, log)
	paymentRequestService := payreqapp.NewService(paymentRequestRepo, billRepo, recorder, log)
	invoiceService := invoice.NewService(billRepo, paymentRepo, customerRepo, orderRepo, templates, pdf, store, invoice.Company{
		Name:     cfg.Billing.CompanyName,
		Address:  cfg.Billing.CompanyAddress,
		Currency: cfg.Billing.Currency,
	}, log)
	analyticsService := analytics.NewService(reportRepo, billRepo, customerRepo, log)
	assistantService := assistant.NewService(model, billRepo, customerRepo, cfg.Assistant.MaxBillsInCtx, log)

	if cfg.Bootstrap.AdminUsername != "" {
		created, err := authService.EnsureAdmin(ctx, identityapp.BootstrapAdmin{
			Username: cfg.Bootstrap.AdminUsername,
			Email:    cfg.Bootstrap.AdminEmail,
			Password: cfg.Bootstrap.AdminPassword,
		})
		if err != nil {
			log.Fatal("Failed to bootstrap admin account", zap.Error(err))
		}
		if created {
			log.Info("Bootstrap admin created", zap.String("username", cfg.Bootstrap.AdminUsername))
		}
	}

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	handlers := router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Product:        handler.NewProductHandler(productService),
		Customer:       handler.NewCustomerHandler(customerService),
		Order:          handler.NewOrderHandler(orderService),
		Bill:           handler.NewBillHandler(billService, invoiceService),
		Payment:        handler.NewPaymentHandler(paymentService),
		PaymentRequest: handler.NewPaymentRequestHandler(paymentRequestService),
		Analytics:      handler.NewAnalyticsHandler(analyticsService),
		Assistant:      handler.NewAssistantHandler(assistantService),
		System:         handler.NewSystemHandler(version, checks),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order matters: the request ID and span exist before anything logs,
	// and JWT runs before profiling so the role label is known.
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	if httpMetrics, err := middleware.Metrics(telemetry.Meter("fabrictrade/http")); err != nil {
		log.Warn("HTTP metrics unavailable", zap.Error(err))
	} else {
		engine.Use(httpMetrics)
	}
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))
	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.IsProduction()
	engine.Use(middleware.SecureWithConfig(securityConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	authConfig := middleware.DefaultAuthConfig(jwtService)
	authConfig.Revocations = revocations
	authConfig.Logger = log
	engine.Use(middleware.AuthenticateWith(authConfig))
	engine.Use(middleware.Profiling(profiler.IsEnabled()))

	engine.GET("/health", handlers.System.Health)
	engine.GET("/api/v1/health", handlers.System.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.HTTP.SwaggerEnabled,
			AllowedIPs: cfg.HTTP.SwaggerAllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	var loginLimit gin.HandlerFunc
	if cfg.HTTP.LoginRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
		defer limiter.Stop()
		loginLimit = middleware.RateLimitByKey(limiter, middleware.LoginKey)
	}
	routes := router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.APIGroups(handlers, loginLimit)...).
		Setup()
	for _, r := range routes {
		log.Debug("Route mounted", zap.String("group", r.Group), zap.String("method", r.Method), zap.String("path", r.Path))
	}
	log.Info("API routes mounted", zap.Int("count", len(routes)))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Failed to stop profiler", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrate brings the schema up to date with the migrations compiled into the binary
func migrate(db *persistence.Database, log *zap.Logger) error {
	m, err := migration.New(db.SQL(), log)
	if err != nil {
		return err
	}
	return m.Up()
}
