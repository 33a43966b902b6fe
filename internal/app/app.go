// Package app wires the dispatch engine from configuration. It is shared by
// the HTTP server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wabalerts/internal/config"
	"wabalerts/internal/domain/notification"
	"wabalerts/internal/infra/commerce"
	"wabalerts/internal/infra/gateway"
	"wabalerts/internal/infra/settings"
	"wabalerts/internal/infra/store"
	"wabalerts/internal/infra/template"

	"go.uber.org/zap"
)

// App holds the wired engine and the resources to release on shutdown.
type App struct {
	Engine   *notification.Engine
	Settings notification.SettingsStore
	closers  []func() error
}

// Close releases every opened resource.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New builds the engine and its collaborators.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}

	settingsStore, err := NewSettingsStore(cfg)
	if err != nil {
		return nil, err
	}
	a.Settings = settingsStore
	if rs, ok := settingsStore.(*settings.RedisStore); ok {
		a.closers = append(a.closers, rs.Close)
	}
	logger.Info("settings store initialized", zap.String("backend", cfg.Settings.Backend))

	subscribers, err := store.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("initializing supabase store: %w", err)
	}
	logger.Info("supabase store initialized")

	source, err := commerce.Open(cfg.Postgres.DSN, commerce.PoolConfig{
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("initializing commerce source: %w", err)
	}
	a.closers = append(a.closers, source.Close)
	if err := source.Ping(ctx); err != nil {
		logger.Warn("shop database not reachable yet", zap.Error(err))
	} else {
		logger.Info("commerce source initialized")
	}

	gw, err := gateway.NewWabaAPIClient(gateway.Config{
		BaseURL:        cfg.Gateway.BaseURL,
		TimeoutSeconds: cfg.Gateway.TimeoutSec,
	}, logger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("initializing gateway client: %w", err)
	}

	a.Engine = notification.NewEngine(
		settingsStore,
		subscribers,
		source,
		template.NewEngine(),
		gw,
		logger.Named("engine"),
	)
	return a, nil
}

// NewSettingsStore returns the settings backend selected by settings.backend.
func NewSettingsStore(cfg *config.Config) (notification.SettingsStore, error) {
	switch cfg.Settings.Backend {
	case config.SettingsBackendStatic:
		return settings.NewStaticStore(settings.FromConfig(cfg)), nil
	case config.SettingsBackendRedis:
		client := settings.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		return settings.NewRedisStore(client, cfg.Settings.RedisKey), nil
	}
	return nil, fmt.Errorf("unsupported settings backend %q", cfg.Settings.Backend)
}
