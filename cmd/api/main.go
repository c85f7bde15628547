package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"provenance-backend/infrastructure/config"
	"provenance-backend/infrastructure/di"
	"provenance-backend/interfaces/http/rest"
	"provenance-backend/pkg/observability"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()
	logger := container.Logging.Logger

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.EnableTracing,
		ServiceName: "provenance-api",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  1.0,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	if cfg.ConfigFile != "" {
		watcher, err := config.NewWatcher(cfg, logger)
		if err != nil {
			logger.Warn("Config file will not be watched", zap.Error(err))
		} else {
			watcher.OnChange(config.ApplyLogLevel(container.Logging.Level))
			defer watcher.Stop()
		}
	}

	serverCfg := rest.ServerConfig{Address: cfg.ServerAddress}
	if container.Metrics != nil {
		serverCfg.MetricsAddress = cfg.MetricsAddress
		serverCfg.Metrics = container.Metrics.Handler()
	}

	logger.Info("Provenance API starting",
		zap.String("address", cfg.ServerAddress),
		zap.String("environment", cfg.Environment),
		zap.String("db_driver", cfg.DBDriver),
		zap.Bool("auth", cfg.AuthEnabled()),
	)
	if err := rest.Serve(ctx, serverCfg, container.Handler, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}
