// Package config defines the configuration structures for the
// AutoGift-Intelligence services.  No I/O lives in this file, only plain data
// types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// HTTPConfig holds HTTP listener tunables.
type HTTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ServerConfig groups the server listeners.
type ServerConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"dbname"`
	SSLMode          string        `mapstructure:"sslmode"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	MigrationPath    string        `mapstructure:"migration_path"`
}

// DatabaseConfig groups relational stores.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Mode         string        `mapstructure:"mode"` // "standalone" | "sentinel" | "cluster"
	Addr         string        `mapstructure:"addr"`
	MasterName   string        `mapstructure:"master_name"`
	Addrs        []string      `mapstructure:"addrs"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// CacheConfig groups cache settings.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// KafkaConfig holds Kafka producer/consumer parameters.
type KafkaConfig struct {
	Brokers          []string      `mapstructure:"brokers"`
	ConsumerGroup    string        `mapstructure:"consumer_group"`
	AutoOffsetReset  string        `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	Compression      string        `mapstructure:"compression"`
	ScanRequestTopic string        `mapstructure:"scan_request_topic"`
	OpportunityTopic string        `mapstructure:"opportunity_topic"`
	DeadLetterTopic  string        `mapstructure:"dead_letter_topic"`
}

// MessagingConfig groups brokers.
type MessagingConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Kafka   KafkaConfig `mapstructure:"kafka"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// PrometheusConfig holds metrics exposition parameters.
type PrometheusConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// MonitoringConfig groups observability settings.
type MonitoringConfig struct {
	Log        LogConfig        `mapstructure:"log"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// EngineConfig holds the gifting intelligence tunables.
type EngineConfig struct {
	ScanWindow               time.Duration `mapstructure:"scan_window"`
	MaxConcurrency           int           `mapstructure:"max_concurrency"`
	RecipientTimeout         time.Duration `mapstructure:"recipient_timeout"`
	TimingStrategy           string        `mapstructure:"timing_strategy"` // "fixed_offset" | "recipient_preference"
	PurchaseLeadTime         time.Duration `mapstructure:"purchase_lead_time"`
	DefaultAdvanceNoticeDays int           `mapstructure:"default_advance_notice_days"`
	DefaultBudgetMin         float64       `mapstructure:"default_budget_min"`
	DefaultBudgetMax         float64       `mapstructure:"default_budget_max"`
	MessageLookback          int           `mapstructure:"message_lookback"`
	InteractionWindow        time.Duration `mapstructure:"interaction_window"`
}

// WorkerConfig holds the scan-request worker parameters.
type WorkerConfig struct {
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
	ScanTimeout time.Duration `mapstructure:"scan_timeout"`
	MetricsPort int           `mapstructure:"metrics_port"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Messaging  MessagingConfig  `mapstructure:"messaging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	// Server
	if c.Server.HTTP.Port < 1 || c.Server.HTTP.Port > 65535 {
		return fmt.Errorf("config: server.http.port %d is out of range [1, 65535]", c.Server.HTTP.Port)
	}

	// Database
	pg := c.Database.Postgres
	if pg.Host == "" {
		return fmt.Errorf("config: database.postgres.host is required")
	}
	if pg.Port < 1 || pg.Port > 65535 {
		return fmt.Errorf("config: database.postgres.port %d is out of range [1, 65535]", pg.Port)
	}
	if pg.DBName == "" {
		return fmt.Errorf("config: database.postgres.dbname is required")
	}
	if pg.MaxOpenConns < 1 {
		return fmt.Errorf("config: database.postgres.max_open_conns must be ≥ 1, got %d", pg.MaxOpenConns)
	}

	// Cache
	if c.Cache.Enabled {
		switch c.Cache.Redis.Mode {
		case "standalone":
			if c.Cache.Redis.Addr == "" {
				return fmt.Errorf("config: cache.redis.addr is required")
			}
		case "sentinel", "cluster":
			if len(c.Cache.Redis.Addrs) == 0 {
				return fmt.Errorf("config: cache.redis.addrs is required in %s mode", c.Cache.Redis.Mode)
			}
		default:
			return fmt.Errorf("config: cache.redis.mode %q is invalid; expected standalone|sentinel|cluster", c.Cache.Redis.Mode)
		}
		if c.Cache.Redis.DB < 0 {
			return fmt.Errorf("config: cache.redis.db must be ≥ 0, got %d", c.Cache.Redis.DB)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("config: cache.ttl must be positive")
		}
	}

	// Messaging
	if c.Messaging.Enabled {
		if len(c.Messaging.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: messaging.kafka.brokers must contain at least one broker address")
		}
		if c.Messaging.Kafka.ConsumerGroup == "" {
			return fmt.Errorf("config: messaging.kafka.consumer_group is required")
		}
	}

	// Engine
	e := c.Engine
	if e.ScanWindow <= 0 {
		return fmt.Errorf("config: engine.scan_window must be positive")
	}
	if e.MaxConcurrency < 1 || e.MaxConcurrency > MaxEngineConcurrency {
		return fmt.Errorf("config: engine.max_concurrency %d is out of range [1, %d]", e.MaxConcurrency, MaxEngineConcurrency)
	}
	switch e.TimingStrategy {
	case TimingFixedOffset, TimingRecipientPreference:
	default:
		return fmt.Errorf("config: engine.timing_strategy %q is invalid; expected %s|%s",
			e.TimingStrategy, TimingFixedOffset, TimingRecipientPreference)
	}
	if e.PurchaseLeadTime <= 0 {
		return fmt.Errorf("config: engine.purchase_lead_time must be positive")
	}
	if e.DefaultAdvanceNoticeDays < 1 {
		return fmt.Errorf("config: engine.default_advance_notice_days must be ≥ 1")
	}
	if e.DefaultBudgetMin < 0 || e.DefaultBudgetMax < e.DefaultBudgetMin {
		return fmt.Errorf("config: engine default budget [%v, %v] is invalid", e.DefaultBudgetMin, e.DefaultBudgetMax)
	}

	// Log
	switch c.Monitoring.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: monitoring.log.level %q is invalid; expected debug|info|warn|error", c.Monitoring.Log.Level)
	}
	switch c.Monitoring.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: monitoring.log.format %q is invalid; expected json|console", c.Monitoring.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
