package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"wabalerts/internal/app"
	"wabalerts/internal/config"
	"wabalerts/internal/domain/notification"
	"wabalerts/internal/logger"
	"wabalerts/internal/router"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("configuration loaded",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
	)

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	ctx := context.Background()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("failed to release resources", zap.Error(err))
		}
	}()

	checkRules(ctx, application.Settings, log)

	notificationHandler := notification.NewHandler(application.Engine, log.Named("http"))

	r := router.New(cfg, log.Named("http"), notificationHandler)

	// ==========================================
	// HTTP Server with Graceful Shutdown
	// ==========================================

	// Write timeout covers the longest gateway round trip.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server exited gracefully")
}

// checkRules reports misconfigured rules at startup. Dispatch still runs; a
// broken rule fails only its own events.
func checkRules(ctx context.Context, store notification.SettingsStore, log *zap.Logger) {
	rules, err := store.NotificationRules(ctx)
	if err != nil {
		log.Warn("cannot check notification rules", zap.Error(err))
		return
	}
	if err := notification.ValidateRules(rules); err != nil {
		log.Warn("notification rules need attention", zap.Error(err))
		return
	}
	log.Info("notification rules loaded", zap.Int("rules", len(rules)))
}
