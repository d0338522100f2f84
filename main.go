package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/auth"
	"github.com/namerhq/namer-engine/pkg/config"
	"github.com/namerhq/namer-engine/pkg/database"
	"github.com/namerhq/namer-engine/pkg/domains"
	"github.com/namerhq/namer-engine/pkg/handlers"
	"github.com/namerhq/namer-engine/pkg/imagen"
	"github.com/namerhq/namer-engine/pkg/llm"
	"github.com/namerhq/namer-engine/pkg/logging"
	"github.com/namerhq/namer-engine/pkg/middleware"
	"github.com/namerhq/namer-engine/pkg/repositories"
	"github.com/namerhq/namer-engine/pkg/services"
	"github.com/namerhq/namer-engine/pkg/services/workqueue"
	"github.com/namerhq/namer-engine/pkg/storage"
	"github.com/namerhq/namer-engine/pkg/svgcolor"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", cfg.Database.Host),
		zap.String("redis", cfg.Redis.Host),
		zap.Strings("tlds", cfg.Domains.TLDs))

	ctx := context.Background()

	// Database
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run over database/sql; the pool itself stays on pgx.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	// Redis backs cross-instance cancellation flags; without it a single
	// instance falls back to in-memory flags.
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	var cancelFlags services.CancelFlagStore
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
		cancelFlags = services.NewRedisCancelFlags(redisClient)
	} else {
		logger.Info("Redis not configured, using in-memory cancellation flags")
		cancelFlags = services.NewMemoryCancelFlags()
	}

	// AI providers
	registry, err := llm.NewRegistry(&llm.RegistryConfig{
		OpenAIBaseURL:   cfg.Providers.OpenAIBaseURL,
		OpenAIAPIKey:    cfg.Providers.OpenAIAPIKey,
		AnthropicAPIKey: cfg.Providers.AnthropicAPIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to build model registry", zap.Error(err))
	}
	pool := llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: cfg.Providers.MaxConcurrent}, logger)

	imageClient, err := imagen.NewOpenAIImageClient(&imagen.Config{
		Endpoint: cfg.Providers.OpenAIBaseURL,
		Model:    cfg.Providers.ImageModel,
		APIKey:   cfg.Providers.OpenAIAPIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create image client", zap.Error(err))
	}

	recolorer, err := svgcolor.NewProcessor()
	if err != nil {
		logger.Fatal("Failed to load color schemes", zap.Error(err))
	}

	store, err := storage.NewDiskStore(cfg.Storage.Root)
	if err != nil {
		logger.Fatal("Failed to create blob store", zap.Error(err))
	}

	checker := domains.NewHTTPChecker(domains.Config{
		BaseURL: cfg.Domains.BaseURL,
		APIKey:  cfg.Domains.APIKey,
		TLDs:    cfg.Domains.TLDs,
	}, logger)

	// Repositories
	projectRepo := repositories.NewProjectRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	cacheRepo := repositories.NewCacheRepository(db)
	logoRepo := repositories.NewLogoRepository(db)
	shareRepo := repositories.NewShareRepository(db)
	exportRepo := repositories.NewExportRepository(db)

	// Services
	domainService := services.NewDomainService(checker, cacheRepo, logger)
	sessionService := services.NewSessionService(
		sessionRepo, cacheRepo, registry, pool,
		llm.NewFallbackGenerator(), domainService, cancelFlags, logger)
	logoService := services.NewLogoService(logoRepo, imageClient, recolorer, store, pool, logger)
	shareService := services.NewShareService(shareRepo,
		services.NewShareableLoaders(sessionRepo, logoRepo), logger)
	exportService := services.NewExportService(exportRepo, sessionRepo, logoRepo, store, logger)

	queue := workqueue.New(logger,
		workqueue.WithStrategy(workqueue.NewThrottledAIStrategy(cfg.Providers.MaxConcurrent)))

	// Authentication
	validator, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSURL:            cfg.Auth.JWKSURL,
		Issuer:             cfg.Auth.Issuer,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	defer validator.Close()
	authMiddleware := auth.NewMiddleware(validator, logger)

	cookieStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewProjectsHandler(projectRepo, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewSessionsHandler(sessionService, sessionRepo, queue, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDomainsHandler(domainService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewLogosHandler(logoService, queue, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewSharesHandler(shareService, cookieStore, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewExportsHandler(exportService, logger).RegisterRoutes(mux, authMiddleware)

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting namer-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	queue.Cancel()
}
