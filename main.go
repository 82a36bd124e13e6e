package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/courier/internal/server"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "courier",
	Short:   "Courier Bridge - parcel delivery orchestration service",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	// Token store: shared Redis cache when configured, in-process otherwise
	store, storeClose, err := initTokenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer storeClose()

	// Initialize the carrier registry
	registry, primary := initCourierRegistry(cfg, store, logger)

	logger.Info("Starting Courier Bridge",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.String("carrier", primary.Name()),
	)

	// Start HTTP server
	srv := server.New(server.Config{
		Port:           cfg.Port,
		TrackingPrefix: cfg.TrackingPrefix,
		WebhookSecret:  cfg.WebhookSecret,
		Events:         cfg.RegisteredEvents,
	}, registry, primary, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
