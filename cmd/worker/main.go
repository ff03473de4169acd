// Worker entry point for AutoGift-Intelligence.  The worker consumes queued
// scan requests, runs each scan under the distributed scan lock and publishes
// the opportunities it finds.  Messages that cannot be processed go to the
// dead-letter topic.
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
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/AutoGift-Intelligence/internal/interfaces/http"
	"github.com/turtacn/AutoGift-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

const (
	poolStatsInterval  = 15 * time.Second
	cachePurgeInterval = time.Minute
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var opts []config.LoadOption
	if configPath != "" {
		opts = append(opts, config.WithConfigPath(configPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}
	if !cfg.Messaging.Enabled {
		return errors.New(errors.ErrCodeFeatureDisabled, "worker requires messaging.enabled")
	}

	logger, err := bootstrap.NewLogger(cfg.Monitoring.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	kc := cfg.Messaging.Kafka
	logger.Info("starting AutoGift-Intelligence worker",
		logging.String("version", version),
		logging.String("topic", kc.ScanRequestTopic),
		logging.String("group", kc.ConsumerGroup),
		logging.Duration("scan_timeout", cfg.Worker.ScanTimeout),
	)

	platform, err := bootstrap.Open(cfg, logger, "worker")
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

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfigFrom(kc, kc.ScanRequestTopic), platform.Producer, logger.Named("consumer"))
	if err != nil {
		return err
	}
	consumer.Subscribe(kc.ScanRequestTopic, kafka.NewScanRequestHandler(svc, cfg.Worker.ScanTimeout, logger))

	health := handlers.NewHealthHandler(version, platform.HealthCheckers()...)
	routerCfg := httpserver.RouterConfig{
		HealthHandler: health,
		Logger:        logger,
	}
	if platform.Collector != nil {
		health.WithRecorder(platform.Metrics)
		routerCfg.MetricsHandler = platform.Collector.Handler()
		routerCfg.MetricsPath = cfg.Monitoring.Prometheus.Path
	}
	opsServer := httpserver.NewServer(config.HTTPConfig{
		Host:            cfg.Server.HTTP.Host,
		Port:            cfg.Worker.MetricsPort,
		ReadTimeout:     cfg.Server.HTTP.ReadTimeout,
		WriteTimeout:    cfg.Server.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.Server.HTTP.ShutdownTimeout,
	}, httpserver.NewRouter(routerCfg), logger.Named("ops"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go platform.ReportPoolStats(ctx, poolStatsInterval)
	go platform.PurgeLocalCache(ctx, cachePurgeInterval)

	errCh := make(chan error, 1)
	go func() { errCh <- opsServer.Start() }()

	if err := consumer.Start(ctx); err != nil {
		return err
	}

	select {
	case err = <-errCh:
		logger.Error("ops server stopped unexpectedly", logging.Err(err))
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	// Close waits for the in-flight scan before the backends are released.
	if cerr := consumer.Close(); cerr != nil {
		logger.Error("consumer close error", logging.Err(cerr))
	}
	if serr := opsServer.Shutdown(context.Background()); serr != nil {
		logger.Error("ops server shutdown error", logging.Err(serr))
	}
	logger.Info("worker stopped",
		logging.Int64("processed", consumer.Processed()),
		logging.Int64("dead_lettered", consumer.DeadLettered()))
	return err
}

//Personal.AI order the ending
