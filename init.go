package main

import (
	"context"

	"github.com/tournevent/courier/internal/config"
	"github.com/tournevent/courier/internal/telemetry"
	"github.com/tournevent/courier/internal/tokencache"
	"github.com/tournevent/courier/pkg/courier"
	"github.com/tournevent/courier/pkg/courier/ninjavan"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initTokenStore(ctx context.Context, cfg *config.Config, logger *otelzap.Logger) (courier.TokenStore, func(), error) {
	if cfg.RedisAddr == "" {
		return courier.NewMemoryTokenStore(), func() {}, nil
	}

	store := tokencache.New(tokencache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}

	logger.Info("Using Redis token cache", zap.String("addr", cfg.RedisAddr))
	return store, func() { store.Close() }, nil
}

func initCourierRegistry(cfg *config.Config, store courier.TokenStore, logger *otelzap.Logger) (*courier.Registry, courier.Courier) {
	registry := courier.NewRegistry()

	nv := ninjavan.NewClient(ninjavan.Config{
		ClientID:     cfg.NinjaVanClientID,
		ClientSecret: cfg.NinjaVanClientSecret,
		BaseURL:      cfg.NinjaVanBaseURL,
		CountryCode:  cfg.NinjaVanCountryCode,
		UseMock:      cfg.NinjaVanUseMock,
	}, store, logger)
	registry.Register(nv)

	return registry, nv
}
