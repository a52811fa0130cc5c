package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cv-screening-backend/config"
	_ "cv-screening-backend/docs" // Important for Swagger
	v1 "cv-screening-backend/internal/delivery/http/v1"
	"cv-screening-backend/internal/domain"
	"cv-screening-backend/internal/notify"
	"cv-screening-backend/internal/repository/postgres"
	"cv-screening-backend/internal/screening"
	"cv-screening-backend/internal/usecase"
	"cv-screening-backend/migrations"
	"cv-screening-backend/pkg/database"
	"cv-screening-backend/pkg/logger"
	"cv-screening-backend/pkg/pdftext"
	"cv-screening-backend/pkg/redis"
	"cv-screening-backend/pkg/security"
	"cv-screening-backend/pkg/security/antivirus"
	"cv-screening-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

// @title           CV Screening API
// @version         1.0
// @description     Receives CVs from the automation webhook, scores them against role rules and serves the admin dashboard.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.GinMode)
	gin.SetMode(cfg.GinMode)
	audit := security.InitSecurityLogger(cfg.GinMode)
	defer audit.Sync() //nolint:errcheck
	logger.Log.Info("Starting CV screening backend", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, dbPool, migrations.FS); err != nil {
		logger.Log.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}
	if cfg.AuditPersist {
		audit.SetPersistFunc(security.NewSecurityEventRepository(dbPool).PersistEvent, 3*time.Second)
		defer audit.Sync() //nolint:errcheck // drain event writes before the pool closes
	}

	// 4. Setup Redis (optional)
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, falling back to in-process limits and events", "error", err)
		}
	}
	defer redis.Close() //nolint:errcheck

	// 5. Setup Screening Rules
	roles, err := screening.DefaultRegistry(cfg.ShopifyRuleset)
	if err != nil {
		logger.Log.Error("Failed to build role registry", "error", err)
		os.Exit(1)
	}
	if cfg.RoleRulesFile != "" {
		if err := roles.LoadRoleFile(cfg.RoleRulesFile); err != nil {
			logger.Log.Error("Failed to load role rules", "file", cfg.RoleRulesFile, "error", err)
			os.Exit(1)
		}
	}
	for _, ev := range roles.Roles() {
		logger.Log.Info("Role registered", "role", ev.RoleID(), "title", ev.Title())
	}

	// 6. Setup Collaborators
	store, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to configure document storage", "error", err)
		os.Exit(1)
	}
	if store == nil {
		logger.Log.Warn("Document storage disabled, CVs are stored without file links")
	}

	hub := notify.NewHub()
	var notifier domain.Notifier = hub
	if client := redis.Client(); client != nil {
		broadcaster := notify.NewRedisBroadcaster(client, cfg.NotifyChannel, hub)
		notifier = broadcaster
		go broadcaster.Run(ctx)
	}

	optionalChecks := map[string]usecase.HealthCheck{"redis": redis.HealthCheck}
	var cvOpts []usecase.CVOption
	if cfg.ClamAVAddress != "" {
		scanner := antivirus.NewClamAVScanner(cfg.ClamAVAddress, cfg.ClamAVTimeout)
		if err := scanner.Ping(ctx); err != nil {
			logger.Log.Warn("ClamAV not reachable yet, documents will be dropped until it is", "error", err)
		}
		cvOpts = append(cvOpts, usecase.WithScanner(scanner, audit))
		optionalChecks["clamav"] = scanner.Ping
	}

	// 7. Setup UseCases
	cvRepo := postgres.NewCVRepository(dbPool)
	cvUC := usecase.NewCVUsecase(cvRepo, roles, store, pdftext.New(cfg.PDFExtractTimeout), notifier, cvOpts...)
	authUC := usecase.NewAuthUsecase(usecase.AuthConfig{
		Email:        cfg.AdminEmail,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.JWTTTL,
	}, security.NewLoginTracker(security.DefaultLoginTrackerConfig(), audit), audit)
	healthUC := usecase.NewHealthUsecase(
		map[string]usecase.HealthCheck{"database": dbPool.Ping},
		optionalChecks,
	)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		CVUC:     cvUC,
		AuthUC:   authUC,
		HealthUC: healthUC,
		Events:   hub,
		Audit:    audit,
		Config:   cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

