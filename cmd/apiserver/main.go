// API server entry point for AutoGift-Intelligence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/bootstrap"
	"github.com/turtacn/AutoGift-Intelligence/internal/config"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/AutoGift-Intelligence/internal/interfaces/http"
	"github.com/turtacn/AutoGift-Intelligence/internal/interfaces/http/handlers"
)

const (
	poolStatsInterval  = 15 * time.Second
	cachePurgeInterval = time.Minute
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort int) error {
	var opts []config.LoadOption
	if configPath != "" {
		opts = append(opts, config.WithConfigPath(configPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.HTTP.Port = httpPort
	}

	logger, level, err := bootstrap.NewLoggerWithLevel(cfg.Monitoring.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if configPath != "" {
		if err := bootstrap.WatchLogLevel(configPath, level, logger); err != nil {
			logger.Warn("configuration watch disabled", logging.Err(err))
		}
	}

	logger.Info("starting AutoGift-Intelligence API server",
		logging.String("version", version),
		logging.Int("http_port", cfg.Server.HTTP.Port),
		logging.Bool("cache_enabled", cfg.Cache.Enabled),
		logging.Bool("messaging_enabled", cfg.Messaging.Enabled),
	)

	platform, err := bootstrap.Open(cfg, logger, "apiserver")
	if err != nil {
		return err
	}
	defer func() {
		if err := platform.Close(); err != nil {
			logger.Error("failed to close backends", logging.Err(err))
		}
	}()

	svc, err := platform.Service()
	if err != nil {
		return err
	}

	health := handlers.NewHealthHandler(version, platform.HealthCheckers()...)
	routerCfg := httpserver.RouterConfig{
		GiftingHandler: handlers.NewGiftingHandler(svc, logger),
		HealthHandler:  health,
		Logger:         logger,
	}
	if platform.Collector != nil {
		health.WithRecorder(platform.Metrics)
		routerCfg.Metrics = platform.Metrics
		routerCfg.MetricsHandler = platform.Collector.Handler()
		routerCfg.MetricsPath = cfg.Monitoring.Prometheus.Path
	}
	server := httpserver.NewServer(cfg.Server.HTTP, httpserver.NewRouter(routerCfg), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go platform.ReportPoolStats(ctx, poolStatsInterval)
	go platform.PurgeLocalCache(ctx, cachePurgeInterval)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
	}
	logger.Info("API server stopped")
	return nil
}

//Personal.AI order the ending
