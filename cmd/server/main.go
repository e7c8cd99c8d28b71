package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	integrityapp "github.com/ledgerbook/backend/internal/application/integrity"
	licensingapp "github.com/ledgerbook/backend/internal/application/licensing"
	recordsapp "github.com/ledgerbook/backend/internal/application/records"
	settingsapp "github.com/ledgerbook/backend/internal/application/settings"
	workbookapp "github.com/ledgerbook/backend/internal/application/workbook"
	domainwb "github.com/ledgerbook/backend/internal/domain/workbook"
	"github.com/ledgerbook/backend/internal/infrastructure/cache"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"github.com/ledgerbook/backend/internal/infrastructure/crypt"
	"github.com/ledgerbook/backend/internal/infrastructure/logger"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence"
	"github.com/ledgerbook/backend/internal/interfaces/http/handler"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
	"github.com/ledgerbook/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

// devLicenseSecret keeps the obfuscator usable in local development; the
// config validator refuses to start production without a real key.
const devLicenseSecret = "dev-only-insecure-secret"

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

	log.Info("Starting ledgerbook backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("driver", cfg.Database.Driver),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	// sqlite deployments create the schema in-process; postgres runs
	// cmd/migrate out of band.
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database schema", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// License identifier obfuscation
	secret := cfg.License.SecretKey
	if secret == "" {
		log.Warn("license.secret_key not set, using insecure development key")
		secret = devLicenseSecret
	}
	obfuscator, err := crypt.New(secret)
	if err != nil {
		log.Fatal("Failed to initialize obfuscator", zap.Error(err))
	}

	// Record snapshot cache (Redis when configured, in-memory otherwise)
	cacheFactory := cache.NewRecordCacheFactory(cfg.Redis, cache.WithLogger(log))
	recordCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize record cache", zap.Error(err))
	}
	defer func() {
		if err := recordCache.Close(); err != nil {
			log.Error("Error closing record cache", zap.Error(err))
		}
	}()

	// Repositories and grid access
	workbookRepo := persistence.NewWorkbookRepository(db.DB)
	gridFactory := func(workbookID string) domainwb.Grid {
		return persistence.NewGridStore(db.DB, workbookID)
	}

	// Application services
	workbookService := workbookapp.NewService(workbookRepo, gridFactory, obfuscator, log)
	recordService := recordsapp.NewService(workbookService, recordCache, log)
	settingsService := settingsapp.NewService(workbookService, log)
	licensingService := licensingapp.NewService(workbookService, log)
	integrityService := integrityapp.NewService(workbookService, recordCache, log)

	if cfg.Workbook.AutoConnect {
		if _, err := workbookService.Connect(context.Background(), cfg.Workbook.DefaultName); err != nil {
			log.Fatal("Failed to auto-connect workbook",
				zap.String("name", cfg.Workbook.DefaultName), zap.Error(err))
		}
		log.Info("Workbook auto-connected", zap.String("name", cfg.Workbook.DefaultName))
	}

	// HTTP handlers
	workbookHandler := handler.NewWorkbookHandler(workbookService)
	recordHandler := handler.NewRecordHandler(recordService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	licenseHandler := handler.NewLicenseHandler(licensingService)
	integrityHandler := handler.NewIntegrityHandler(integrityService)
	systemHandler := handler.NewSystemHandler(db, version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first so recovery and access logs carry it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/healthz", systemHandler.Healthz)

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(workbookHandler).
		Register(recordHandler).
		Register(settingsHandler).
		Register(licenseHandler).
		Register(integrityHandler).
		Register(systemHandler)
	r.Setup()

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
