// Package bootstrap opens the infrastructure described by a Config and wires
// the intelligence service on top of it.  The API server, the worker and the
// CLI share it.
package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
	"github.com/turtacn/AutoGift-Intelligence/internal/config"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/AutoGift-Intelligence/internal/interfaces/http/handlers"
)

// NewLogger builds the process logger from the monitoring section.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	l, _, err := NewLoggerWithLevel(cfg)
	return l, err
}

// NewLoggerWithLevel is NewLogger plus a handle for changing the level on
// configuration reloads.
func NewLoggerWithLevel(cfg config.LogConfig) (logging.Logger, *logging.Level, error) {
	return logging.NewLoggerWithLevel(logging.LogConfig{
		Level:       cfg.Level,
		Format:      cfg.Format,
		OutputPaths: cfg.OutputPaths,
	})
}

// WatchLogLevel applies monitoring.log.level changes in configPath to level
// until the process exits.  Other settings need a restart.
func WatchLogLevel(configPath string, level *logging.Level, logger logging.Logger) error {
	logger = logging.OrNop(logger)
	return config.Watch(configPath, func(cfg *config.Config) {
		if next := cfg.Monitoring.Log.Level; next != level.String() {
			level.Set(next)
			logger.Info("log level changed", logging.String("level", next))
		}
	}, func(err error) {
		logger.Warn("ignoring invalid configuration change", logging.Err(err))
	})
}

// Platform holds the opened infrastructure.  Redis, Producer and Events are
// nil when their subsystem is disabled; Metrics is nil when Prometheus is.
// LocalCache replaces Redis as the analysis cache when Redis is disabled.
type Platform struct {
	Config *config.Config
	Logger logging.Logger

	Postgres   *postgres.Connection
	Redis      *redis.Client
	LocalCache *intelligence.MemoryCache
	Producer   *kafka.Producer
	Events     *kafka.EventPublisher

	Collector prometheus.MetricsCollector
	Metrics   *prometheus.EngineMetrics

	closers []func() error
}

// Open connects to every enabled backend.  On failure whatever was already
// opened is closed again.
func Open(cfg *config.Config, logger logging.Logger, service string) (*Platform, error) {
	p := &Platform{Config: cfg, Logger: logging.OrNop(logger)}
	if err := p.open(service); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Platform) open(service string) error {
	cfg := p.Config
	var err error

	if cfg.Monitoring.Prometheus.Enabled {
		p.Collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfigFrom(cfg.Monitoring.Prometheus, service), p.Logger)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		p.Metrics = prometheus.NewEngineMetrics(p.Collector)
	}

	p.Postgres, err = postgres.NewConnection(cfg.Database.Postgres, p.Logger.Named("postgres"))
	if err != nil {
		return err
	}
	p.closers = append(p.closers, p.Postgres.Close)

	if cfg.Cache.Enabled {
		p.Redis, err = redis.NewClient(cfg.Cache.Redis, p.Logger.Named("redis"))
		if err != nil {
			return err
		}
		p.closers = append(p.closers, p.Redis.Close)
	}

	if cfg.Messaging.Enabled {
		kc := cfg.Messaging.Kafka
		p.Producer, err = kafka.NewProducer(kafka.ProducerConfigFrom(kc), p.Logger.Named("kafka"))
		if err != nil {
			return err
		}
		p.closers = append(p.closers, p.Producer.Close)
		p.Events = kafka.NewEventPublisher(p.Producer, kc.ScanRequestTopic, kc.OpportunityTopic, p.Logger)
	}
	return nil
}

// Service wires the repositories, cache, lock and publishers into an
// intelligence.Service.
func (p *Platform) Service() (intelligence.Service, error) {
	log := p.Logger
	deps := intelligence.Dependencies{
		Connections: repositories.NewConnectionRepository(p.Postgres, log),
		Messages:    repositories.NewMessageRepository(p.Postgres, log),
		Profiles:    repositories.NewProfileRepository(p.Postgres, log),
		Wishlists:   repositories.NewWishlistRepository(p.Postgres, log),
		Rules:       repositories.NewRuleRepository(p.Postgres, log),
		LockTTL:     p.Config.Worker.LockTTL,
		Logger:      log,
	}
	if p.Metrics != nil {
		deps.Metrics = p.Metrics
	}
	if p.Redis != nil {
		prefix := p.Config.Cache.Redis.KeyPrefix
		deps.Cache = redis.NewIntelligenceCache(p.Redis, log, redis.WithPrefix(prefix))
		deps.Locker = redis.NewScanLocker(p.Redis, log, prefix)
	} else {
		if p.LocalCache == nil {
			p.LocalCache = intelligence.NewMemoryCache(nil)
		}
		deps.Cache = p.LocalCache
	}
	if p.Events != nil {
		deps.ScanRequests = p.Events
		deps.Opportunities = p.Events
	}

	return intelligence.NewService(deps, intelligence.ConfigFromEngine(p.Config.Engine, p.Config.Cache.TTL))
}

// HealthCheckers returns one probe per opened backend.
func (p *Platform) HealthCheckers() []handlers.HealthChecker {
	var checkers []handlers.HealthChecker
	if p.Postgres != nil {
		checkers = append(checkers, handlers.CheckFunc("postgres", p.Postgres.HealthCheck))
	}
	if p.Redis != nil {
		checkers = append(checkers, handlers.CheckFunc("redis", p.Redis.Ping))
	}
	if p.Producer != nil {
		brokers := p.Config.Messaging.Kafka.Brokers
		checkers = append(checkers, handlers.CheckFunc("kafka", func(ctx context.Context) error {
			return kafka.Ping(ctx, brokers)
		}))
	}
	return checkers
}

// ReportPoolStats publishes postgres pool statistics every interval until
// ctx is done.
func (p *Platform) ReportPoolStats(ctx context.Context, interval time.Duration) {
	if p.Metrics == nil || p.Postgres == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		p.Metrics.RecordDBPool("postgres", p.Postgres.Stats())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PurgeLocalCache evicts expired LocalCache entries every interval until ctx
// is done.  It returns at once when there is no local cache.
func (p *Platform) PurgeLocalCache(ctx context.Context, interval time.Duration) {
	if p.LocalCache == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := p.LocalCache.Purge(); n > 0 {
				p.Logger.Debug("local cache purged", logging.Int("evicted", n))
			}
		}
	}
}

// Close releases the backends in reverse opening order.
func (p *Platform) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return stderrors.Join(errs...)
}

//Personal.AI order the ending
