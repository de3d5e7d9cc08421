package main

import (
	"context"
	"net/http"
	"time"

	"github.com/blockhaven/backend/src/Infrastructure/changenow"
	"github.com/blockhaven/backend/src/config"
	cronRepo "github.com/blockhaven/backend/src/cron/repository"
	cron "github.com/blockhaven/backend/src/cron/usecase"
	"github.com/blockhaven/backend/src/exchange/adapter/provider"
	exchangeHD "github.com/blockhaven/backend/src/exchange/delivery/http"
	exchangeRepo "github.com/blockhaven/backend/src/exchange/repository"
	exchange "github.com/blockhaven/backend/src/exchange/usecase"
	faqHD "github.com/blockhaven/backend/src/faq/delivery/http"
	faqRepo "github.com/blockhaven/backend/src/faq/repository"
	faq "github.com/blockhaven/backend/src/faq/usecase"
	"github.com/blockhaven/backend/src/logger"
	feeHD "github.com/blockhaven/backend/src/servicefee/delivery/http"
	feeRepo "github.com/blockhaven/backend/src/servicefee/repository"
	fee "github.com/blockhaven/backend/src/servicefee/usecase"
	userHD "github.com/blockhaven/backend/src/user/delivery/http"
	userRepo "github.com/blockhaven/backend/src/user/repository"
	user "github.com/blockhaven/backend/src/user/usecase"

	_ "github.com/blockhaven/backend/docs" // Swagger docs
	_ "github.com/lib/pq"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	cfg := config.LoadFromEnv()
	logg := logger.New(cfg.Env)

	// --- Database connection ---
	logg.Infof("Connecting to database")

	gormDB, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		logg.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logg.Fatalf("Failed to get generic DB handle: %v", err)
	}
	defer sqlDB.Close()

	// Connection pool tuning
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)

	// --- Provider client ---
	cnClient, err := changenow.NewClient(cfg.ChangeNow.BaseURL,
		changenow.WithHTTPClient(&http.Client{Timeout: cfg.ProviderTimeout}),
		changenow.WithAPIKeys(cfg.ChangeNow.APIKey, cfg.ChangeNow.SecondaryKey),
		changenow.WithLogger(logg.Zerolog()),
	)
	if err != nil {
		logg.Fatalf("Failed to build provider client: %v", err)
	}

	// --- Dependencies ---
	currencyRepo := exchangeRepo.NewCurrencyRepo(gormDB, logg)
	pairRepo := exchangeRepo.NewPairRepo(gormDB, logg)
	exchRepo := exchangeRepo.NewExchangeRepo(gormDB, logg)

	exchangeSvc := exchange.NewService(
		provider.NewChangeNowAdapter(cnClient),
		currencyRepo, pairRepo, exchRepo,
		logg,
	)
	exchangeHandler := exchangeHD.NewHandler(exchangeSvc, logg)

	userSvc := user.NewService(userRepo.NewUserRepo(gormDB, logg), logg, cfg.JWTSecret, cfg.TokenTTL)
	userHandler := userHD.NewHandler(userSvc, logg)

	if cfg.AdminEmail != "" {
		if err := userSvc.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logg.Fatalf("Failed to seed admin account: %v", err)
		}
	}

	feeSvc := fee.NewService(feeRepo.NewFeeRepo(gormDB, logg), logg)
	feeHandler := feeHD.NewHandler(feeSvc, logg)

	faqSvc := faq.NewService(faqRepo.NewFAQRepo(gormDB, logg), logg)
	faqHandler := faqHD.NewHandler(faqSvc, logg)

	// --- Background jobs ---
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	scheduler := cron.NewScheduler(
		exchangeSvc,
		cronRepo.NewJobLockRepo(gormDB, logg),
		logg,
		cfg.CatalogSyncInterval,
		cfg.StatusRefreshInterval,
	)
	scheduler.Start(jobCtx)

	// --- Router ---
	r := gin.New()

	// Core middleware
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()
		logg.Infof("%s %s status:%d duration:%s request_id:%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			requestID,
		)
	})

	// --- Healthcheck ---
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Swagger ---
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// --- API routes ---
	api := r.Group("/api")
	auth := userHandler.RequireAuth()
	admin := userHandler.RequireAdmin()

	userHandler.RegisterRoutes(api)
	exchangeHandler.RegisterRoutes(api, auth, admin)
	feeHandler.RegisterRoutes(api, auth, admin)
	faqHandler.RegisterRoutes(api, auth, admin)

	// --- Start server ---
	logg.Infof("Starting service on %s (env=%s)", cfg.ListenAddr, cfg.Env)
	logg.Infof("Swagger UI available at http://localhost%s/swagger/index.html", cfg.ListenAddr)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatalf("Server terminated unexpectedly: %v", err)
	}
}
