package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wanderspace/overseer/internal"
	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/handler"
	"github.com/wanderspace/overseer/internal/jobs"
	"github.com/wanderspace/overseer/internal/mapstorage"
	"github.com/wanderspace/overseer/internal/metrics"
	"github.com/wanderspace/overseer/internal/middleware"
	"github.com/wanderspace/overseer/internal/notify"
	"github.com/wanderspace/overseer/internal/oidc"
	"github.com/wanderspace/overseer/internal/repository"
	"github.com/wanderspace/overseer/internal/service"
	"github.com/wanderspace/overseer/internal/session"
	"github.com/wanderspace/overseer/internal/storage"
	"github.com/wanderspace/overseer/internal/worker"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel)

	isSecure := cfg.IsSecure()

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Session store: redis when configured, always wrapped around the
	// in-process store so an unreachable redis degrades instead of
	// failing logins.
	memStore := session.NewMemoryStore(cfg.SessionSweepInterval, logger)
	var sessionStore session.Store = memStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		sessionStore = session.NewFallbackStore(session.NewRedisStore(redis.NewClient(opts), logger), memStore, logger)
		logger.Info("Session store: redis with memory fallback")
	} else {
		logger.Info("Session store: memory only")
	}

	codec, err := session.NewTokenCodec([]byte(cfg.SessionSecret))
	if err != nil {
		return fmt.Errorf("session codec initialization failed: %w", err)
	}

	// Object storage for world previews
	var objectStore storage.Storage
	if cfg.StorageEndpoint != "" {
		objectStore, err = storage.NewS3Storage(storage.S3Config{
			Endpoint:        cfg.StorageEndpoint,
			Region:          cfg.StorageRegion,
			Bucket:          cfg.StorageBucket,
			AccessKeyID:     cfg.StorageAccessKey,
			SecretAccessKey: cfg.StorageSecretKey,
			PublicURL:       cfg.StoragePublicURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("storage initialization failed: %w", err)
		}
	} else {
		logger.Warn("STORAGE_ENDPOINT not set, world previews held in process memory")
		objectStore = storage.NewMemoryStorage()
	}

	// Map-storage client for WAM sync
	var maps mapstorage.Client
	if cfg.MapStorageURL != "" {
		maps = mapstorage.NewHTTPClient(cfg.MapStorageURL, cfg.MapStorageToken, logger)
	} else {
		logger.Warn("MAP_STORAGE_URL not set, WAM sync disabled")
		maps = mapstorage.NewNopClient()
	}

	// Discord notifier. Universes without their own webhook fall back to
	// the platform default; with neither, notifications are dropped.
	notifier := notify.NewDiscordNotifier(cfg.DiscordWebhookURL, logger)

	// Initialize services
	userService := service.NewUserService(repo, logger)
	universeService := service.NewUniverseService(repo, logger)
	worldService := service.NewWorldService(repo, objectStore, service.NewImagingProcessor(), logger)
	roomService := service.NewRoomService(repo, maps, logger)
	templateService := service.NewTemplateService(repo, logger)
	botService := service.NewBotService(repo, logger)
	memberService := service.NewMemberService(repo, notifier, logger)
	usageService := service.NewUsageService(repo, logger)
	accessService := service.NewAccessService(repo, logger)

	// Background worker
	rollupCtx, stopRollups := context.WithCancel(ctx)
	defer stopRollups()

	var jobWorker *worker.Worker
	if cfg.WorkerEnabled {
		workerCfg := worker.DefaultConfig()
		workerCfg.Concurrency = cfg.WorkerConcurrency
		workerCfg.PollInterval = cfg.WorkerPollInterval
		workerCfg.JobTimeout = cfg.WorkerJobTimeout

		jobWorker, err = worker.New(db, repo, workerCfg, logger)
		if err != nil {
			return fmt.Errorf("worker initialization failed: %w", err)
		}
		jobWorker.Register(jobs.NewWorldWamSyncHandler(repo, maps, logger))
		jobWorker.Register(jobs.NewRoomAccessNotifyHandler(repo, notifier, logger))
		jobWorker.Register(jobs.NewUsageRollupHandler(repo, logger))
		jobWorker.Register(jobs.NewAccessRollupHandler(repo, logger))
		jobWorker.Start(ctx)
		logger.Info("Worker started", "concurrency", workerCfg.Concurrency)

		go scheduleRollups(rollupCtx, repo, logger)
	} else {
		logger.Warn("Worker disabled, background jobs will queue without running")
	}

	// OIDC login bridge
	oidcClient, err := oidc.New(ctx, oidc.Config{
		IssuerURL:    cfg.OIDCIssuer,
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		CookieSecret: []byte(cfg.SessionSecret),
		Secure:       isSecure,
	})
	if err != nil {
		return fmt.Errorf("oidc initialization failed: %w", err)
	}

	// Initialize middleware
	az := middleware.NewAuthorizer(cfg.AdminAPIToken, codec, userService, botService, logger).
		WithAccessVerifier(oidcClient).
		WithSuperAdminEmails(cfg.SuperAdminEmails)
	gate := middleware.NewSessionGate(codec, cfg.AdminPathPrefix, isSecure, logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure, cfg.EmbedAllowedOrigins)
	loginLimiter := middleware.NewLoginRateLimiter(logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(oidcClient, userService, sessionStore, codec, isSecure, logger)
	adminHandler := handler.NewAdminHandler(universeService, userService, cfg.SuperAdminEmails, logger)
	universeHandler := handler.NewUniverseHandler(universeService, memberService, logger)
	worldHandler := handler.NewWorldHandler(worldService, memberService, logger)
	roomHandler := handler.NewRoomHandler(roomService, worldService, memberService, logger)
	templateHandler := handler.NewTemplateHandler(templateService, memberService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	memberHandler := handler.NewMemberHandler(memberService, logger)
	botHandler := handler.NewBotHandler(botService, worldService, memberService, logger)
	usageHandler := handler.NewUsageHandler(usageService, memberService, logger)
	accessHandler := handler.NewAccessHandler(accessService, memberService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics (basic auth)
	mux.Handle("GET /metrics", middleware.MetricsAuth(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))

	// Login flow (public)
	authHandler.RegisterRoutes(mux, loginLimiter.Limit)

	// Dashboard surface; the session gate in front of the mux guards these
	adminHandler.RegisterRoutes(mux)

	// API routes authenticate per request through the authorizer
	requireAuth := az.Require(auth.KindAdminToken, auth.KindSessionUser)
	requireService := az.Require(auth.KindServiceToken)

	universeHandler.RegisterRoutes(mux, requireAuth, az.RequireSuperAdmin)
	worldHandler.RegisterRoutes(mux, requireAuth)
	roomHandler.RegisterRoutes(mux, requireAuth)
	templateHandler.RegisterRoutes(mux, requireAuth)
	userHandler.RegisterRoutes(mux, requireAuth, az.RequireSuperAdmin)
	memberHandler.RegisterRoutes(mux, requireAuth)
	botHandler.RegisterRoutes(mux, requireAuth)
	usageHandler.RegisterRoutes(mux, requireAuth, requireService)
	accessHandler.RegisterRoutes(mux, requireAuth, az.RequireSuperAdmin)

	// Global middleware chain. The gate sits innermost so the outer layers
	// also observe redirected requests.
	root := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
		gate.Handler,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting requests, then drain the worker, then release the
	// session store. The database closes last via defer.
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	stopRollups()
	if jobWorker != nil {
		jobWorker.Stop()
	}
	if err := sessionStore.Close(); err != nil {
		logger.Error("Session store close error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// scheduleRollups enqueues the nightly usage and access rollups: one pass at
// startup for yesterday, then one every 24 hours. The rollup jobs upsert
// their aggregates, so duplicate enqueues are harmless.
func scheduleRollups(ctx context.Context, queries *repository.Queries, logger *slog.Logger) {
	enqueue := func() {
		day := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		if _, err := worker.EnqueueUsageRollup(ctx, queries, day); err != nil {
			logger.Error("failed to enqueue usage rollup", "day", day, "error", err)
		}
		if _, err := worker.EnqueueAccessRollup(ctx, queries, day); err != nil {
			logger.Error("failed to enqueue access rollup", "day", day, "error", err)
		}
	}

	enqueue()
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
