package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"baryabazaar-api/internal/cache"
	"baryabazaar-api/internal/config"
	"baryabazaar-api/internal/controller"
	"baryabazaar-api/internal/ledger"
	"baryabazaar-api/internal/messaging"
	"baryabazaar-api/internal/middleware"
	"baryabazaar-api/internal/models"
	"baryabazaar-api/internal/monitoring"
	"baryabazaar-api/internal/repository"
	"baryabazaar-api/internal/scheduler"
	"baryabazaar-api/internal/service"
	"baryabazaar-api/internal/validation"
	"baryabazaar-api/pkg/database"
	"baryabazaar-api/pkg/logger"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Logging)

	logrus.WithFields(logrus.Fields{
		"version":    version,
		"build_time": buildTime,
		"git_commit": gitCommit,
		"port":       cfg.Server.Port,
	}).Info("Starting BaryaBazaar API")

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := initializeApp(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logrus.WithField("address", server.Addr).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	cancel()
	logrus.Info("Server exited")
}

// Application holds all application dependencies.
type Application struct {
	config  *config.Config
	router  *gin.Engine
	cleanup func()
}

func initializeApp(ctx context.Context, cfg *config.Config) (*Application, error) {
	logrus.Info("Initializing application dependencies...")

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := db.CreateIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	balanceCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		logrus.WithError(err).Warn("Redis unavailable, continuing without cache")
		balanceCache = nil
	}

	publisher, err := messaging.NewAlertPublisher(cfg.RabbitMQ)
	if err != nil {
		logrus.WithError(err).Warn("RabbitMQ unavailable, continuing without alerts")
		publisher = nil
	}

	metrics := monitoring.NewMetrics()
	windower := ledger.NewWindower(cfg.Trading.Timezone, cfg.Trading.DailyResetTime)

	txRepo := repository.NewTransactionRepository(db.Database)
	userRepo := repository.NewUserRepository(db.Database)
	registryRepo := repository.NewRegistryRepository(db.Database)
	auditRepo := repository.NewAuditRepository(db.Database)
	sessionRepo := repository.NewSessionRepository(db.Database)

	validator := validation.NewTradeValidator(validation.Limits{
		MinUSDTAmount:        decimal.NewFromFloat(cfg.Trading.MinUSDTAmount),
		MaxUSDTAmount:        decimal.NewFromFloat(cfg.Trading.MaxUSDTAmount),
		RateDeviationPercent: decimal.NewFromFloat(cfg.Trading.RateDeviationPercent),
		LargeTransactionPHP:  decimal.NewFromFloat(cfg.Trading.LargeTransactionPHP),
	})

	ledgerSvc := service.NewLedgerService(
		txRepo, userRepo, registryRepo, auditRepo,
		validator, balanceCache, publisher, metrics, windower, cfg)
	adminSvc := service.NewAdminService(userRepo, registryRepo, txRepo, auditRepo)
	analyticsSvc := service.NewAnalyticsService(txRepo, sessionRepo, balanceCache, publisher, metrics, windower, cfg)
	reportSvc := service.NewReportService(txRepo, auditRepo, windower)
	sessionSvc := service.NewSessionService(sessionRepo, userRepo)

	jobs, err := scheduler.New(ledgerSvc, adminSvc, analyticsSvc, sessionSvc, publisher, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build scheduler: %w", err)
	}
	if err := jobs.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	health := monitoring.NewHealthChecker(db, balanceCache)

	ledgerCtrl := controller.NewLedgerController(ledgerSvc)
	adminCtrl := controller.NewAdminController(adminSvc, sessionSvc)
	analyticsCtrl := controller.NewAnalyticsController(analyticsSvc, reportSvc)

	router := setupRouter(cfg, metrics, health, ledgerCtrl, adminCtrl, analyticsCtrl)

	cleanup := func() {
		logrus.Info("Cleaning up application resources...")
		jobs.Stop()
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close RabbitMQ connection")
			}
		}
		if balanceCache != nil {
			if err := balanceCache.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close Redis connection")
			}
		}
		if err := db.Close(context.Background()); err != nil {
			logrus.WithError(err).Warn("Failed to close MongoDB connection")
		}
	}

	logrus.Info("Application initialization completed")

	return &Application{
		config:  cfg,
		router:  router,
		cleanup: cleanup,
	}, nil
}

func setupRouter(
	cfg *config.Config,
	metrics *monitoring.Metrics,
	health *monitoring.HealthChecker,
	ledgerCtrl *controller.LedgerController,
	adminCtrl *controller.AdminController,
	analyticsCtrl *controller.AnalyticsController,
) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logrus.WithError(err).Warn("Failed to set trusted proxies")
	}

	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: false,
	}))
	router.Use(middleware.RequestLogging(metrics))

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	router.Use(rateLimiter.Handler())

	router.GET(cfg.Monitoring.HealthCheckPath, health.Handler())
	if cfg.Monitoring.EnableMetrics {
		router.GET(cfg.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    version,
			"build_time": buildTime,
			"git_commit": gitCommit,
			"service":    "baryabazaar-api",
		})
	})

	auth := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)

	api := router.Group("/api")
	api.Use(auth.JWTAuth())
	{
		transactions := api.Group("/transactions")
		{
			transactions.POST("", ledgerCtrl.RecordTrade)
			transactions.POST("/validate", ledgerCtrl.ValidateTrade)
			transactions.GET("", ledgerCtrl.GetTransactions)
			transactions.GET("/:id", ledgerCtrl.GetTransaction)
			transactions.PUT("/:id",
				auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin),
				ledgerCtrl.UpdateTransaction)
			transactions.DELETE("/:id",
				auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin),
				ledgerCtrl.DeleteTransaction)
		}

		api.POST("/transfers", ledgerCtrl.RecordTransfer)

		balances := api.Group("/balances")
		{
			balances.GET("/users", ledgerCtrl.GetUserBalances)
			balances.GET("/platforms", ledgerCtrl.GetPlatformBalances)
			balances.GET("/total", ledgerCtrl.GetTotalCompanyUSDT)
			balances.PUT("/users/:id/:bank",
				auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin),
				ledgerCtrl.AdjustUserBalance)
			balances.PUT("/platforms/:name",
				auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin),
				ledgerCtrl.AdjustPlatformBalance)
		}

		users := api.Group("/users")
		{
			users.GET("", adminCtrl.GetUsers)
			users.GET("/:id", adminCtrl.GetUser)
			users.GET("/:id/transactions", ledgerCtrl.GetUserTransactions)
			users.GET("/:id/sessions", adminCtrl.GetUserSessions)
			users.POST("/:id/login", adminCtrl.RecordLogin)
			users.POST("/:id/logout", adminCtrl.RecordLogout)

			users.POST("",
				auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin),
				adminCtrl.CreateUser)
			users.PUT("/:id",
				auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin),
				adminCtrl.UpdateUser)
			users.PUT("/:id/role",
				auth.RequireRole(models.RoleSuperAdmin),
				adminCtrl.ChangeRole)
			users.DELETE("/:id",
				auth.RequireRole(models.RoleSuperAdmin),
				adminCtrl.DeleteUser)
		}

		platforms := api.Group("/platforms")
		platforms.Use(auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin))
		{
			platforms.POST("", adminCtrl.AddPlatform)
			platforms.DELETE("/:name", adminCtrl.DeletePlatform)
		}

		api.GET("/banks", adminCtrl.GetBanks)

		banks := api.Group("/banks")
		banks.Use(auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin))
		{
			banks.POST("", adminCtrl.AddBank)
			banks.DELETE("/:name", adminCtrl.DeleteBank)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/summary", analyticsCtrl.GetSummary)
			analytics.GET("/rates", analyticsCtrl.GetRates)
		}

		reports := api.Group("/reports")
		reports.Use(auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin, models.RoleAnalyst))
		{
			reports.GET("/transactions.csv", analyticsCtrl.ExportTransactions)
			reports.GET("/audit.csv", analyticsCtrl.ExportAuditTrail)
		}

		audit := api.Group("/audit")
		audit.Use(auth.RequireRole(models.RoleSuperAdmin, models.RoleAdmin, models.RoleAnalyst))
		{
			audit.GET("", adminCtrl.GetAuditTrail)
		}
	}

	return router
}
