package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	migrationapp "github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/application/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/audit"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/config"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/logger"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/persistence"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/interfaces/http/handler"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/interfaces/http/middleware"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting store migrator",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	records := persistence.NewGormMigrationRecordRepository(db.DB, cfg.Migration.ClaimRetries)
	mappings := persistence.NewGormReferenceMapRepository(db.DB)

	// Token provider, optionally cached in Redis
	var tokens wix.TokenProvider = wix.NewStaticTokenProvider(cfg.Wix.AccountTokens)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unavailable, token caching disabled", zap.Error(err))
		} else {
			tokens = wix.NewCachedTokenProvider(tokens, rdb, cfg.Wix.TokenCacheTTL)
			log.Info("Redis token cache enabled", zap.String("addr", cfg.Redis.Addr()))
			defer func() { _ = rdb.Close() }()
		}
	}

	auditLog := audit.NewLogger(db.DB, log)
	service := migrationapp.NewService(cfg, records, mappings, tokens, auditLog, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestLogger(log))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSystemHandler(db))
	r.Register(handler.NewMigrationHandler(service))
	r.Setup()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
