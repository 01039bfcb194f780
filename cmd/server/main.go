package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appsync "github.com/acefarmer/backend/internal/application/sync"
	"github.com/acefarmer/backend/internal/domain/refdata"
	"github.com/acefarmer/backend/internal/infrastructure/bijli"
	"github.com/acefarmer/backend/internal/infrastructure/cache"
	"github.com/acefarmer/backend/internal/infrastructure/config"
	"github.com/acefarmer/backend/internal/infrastructure/logger"
	"github.com/acefarmer/backend/internal/infrastructure/persistence"
	"github.com/acefarmer/backend/internal/interfaces/http/handler"
	"github.com/acefarmer/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(&cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ACE Farmer backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database ready")

	limiter := newRefreshLimiter(cfg, log)
	defer func() {
		_ = limiter.Close()
	}()

	fetcher, err := bijli.NewClient(&bijli.Config{
		BaseURL:        cfg.Bijli.BaseURL,
		APIKey:         cfg.Bijli.APIKey,
		TimeoutSeconds: cfg.Bijli.TimeoutSeconds,
	}, log)
	if err != nil {
		log.Fatal("Failed to create BIJLI client", zap.Error(err))
	}

	resolver := refdata.NewResolver(log, cfg.Sync.RefDataPaths...)

	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	savingsRepo := persistence.NewGormSavingsRepository(db.DB)
	loanRepo := persistence.NewGormLoanRepository(db.DB)

	reconciler := appsync.NewReconciler(
		customerRepo, savingsRepo, loanRepo, resolver, log, cfg.Sync.PreferDayFirst)
	orchestrator := appsync.NewOrchestrator(
		fetcher, reconciler, customerRepo, savingsRepo, loanRepo,
		limiter, log, cfg.Sync.RefreshCooldown, cfg.Sync.FallbackToStored)

	engine := router.NewEngine(cfg, log)

	healthHandler := handler.NewHealthHandler(db)
	engine.GET("/healthz", healthHandler.Healthz)

	r := router.NewRouter(engine)
	r.Register(handler.NewSyncHandler(orchestrator, cfg.Sync.BulkWorkers, log))
	r.Register(handler.NewCustomerHandler(orchestrator))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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

// newRefreshLimiter picks the cooldown backend: Redis when configured so that
// several instances share state, otherwise in-process
func newRefreshLimiter(cfg *config.Config, log *zap.Logger) cache.RefreshLimiter {
	if !cfg.RedisEnabled() {
		log.Info("Using in-memory refresh limiter")
		return cache.NewInMemoryRefreshLimiter()
	}

	limiter, err := cache.NewRedisRefreshLimiter(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory refresh limiter", zap.Error(err))
		return cache.NewInMemoryRefreshLimiter()
	}
	log.Info("Using Redis refresh limiter", zap.String("host", cfg.Redis.Host))
	return limiter
}
