package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pagbridge/internal/bootstrap"
	"pagbridge/internal/config"
	cronpkg "pagbridge/internal/cron"
	"pagbridge/internal/gateway"
	"pagbridge/internal/middleware"
	"pagbridge/internal/repository"
	"pagbridge/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Gateway adapters (fail fast on incomplete credentials) ---
	gateways, err := gateway.BuildRegistry(cfg.Gateways.Moip, cfg.Gateways.PagSeguro, logger)
	if err != nil {
		logger.Fatal("Failed to build gateway registry", zap.Error(err))
	}
	for name := range gateways {
		logger.Info("Payment gateway enabled", zap.String("gateway", name))
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Notification Deduper (Redis with in-memory fallback) ---
	deduper, dedupeErr := middleware.NewNotificationDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		cfg.Reconcile.DedupTTL,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for callback dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Routes ---
	router.Setup(e, db, gateways, deduper, logger, cfg.API.Key)

	// --- Cron Scheduler ---
	scheduler := cronpkg.New(repository.NewTransactionRepository(db), cfg.Reconcile.PendingTTL, logger)
	scheduler.Start()

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting pagbridge server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop cron
	ctx := scheduler.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
