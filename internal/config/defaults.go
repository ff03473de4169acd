package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultHTTPHost            = "0.0.0.0"
	DefaultHTTPPort            = 8080
	DefaultHTTPReadTimeout     = 15 * time.Second
	DefaultHTTPWriteTimeout    = 30 * time.Second
	DefaultHTTPShutdownTimeout = 30 * time.Second

	DefaultDBHost         = "localhost"
	DefaultDBPort         = 5432
	DefaultDBName         = "autogift"
	DefaultDBSSLMode      = "disable"
	DefaultDBMaxOpenConns = 25
	DefaultDBMaxIdleConns = 10
	DefaultMigrationPath  = "migrations"

	DefaultRedisMode      = "standalone"
	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "autogift:"
	DefaultCacheTTL       = 15 * time.Minute

	DefaultKafkaBroker        = "localhost:9092"
	DefaultKafkaConsumerGroup = "autogift-worker"
	DefaultScanRequestTopic   = "autogift.scan.requested"
	DefaultOpportunityTopic   = "autogift.opportunity.detected"
	DefaultDeadLetterTopic    = "autogift.dead_letter"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "autogift"
	DefaultMetricsPath      = "/metrics"

	// Engine
	TimingFixedOffset         = "fixed_offset"
	TimingRecipientPreference = "recipient_preference"

	DefaultScanWindow        = 90 * 24 * time.Hour
	DefaultEngineConcurrency = 8
	MaxEngineConcurrency     = 16
	DefaultRecipientTimeout  = 5 * time.Second
	DefaultPurchaseLeadTime  = 5 * 24 * time.Hour
	DefaultAdvanceNoticeDays = 3
	DefaultBudgetMin         = 25.0
	DefaultBudgetMax         = 100.0
	DefaultMessageLookback   = 20
	DefaultInteractionWindow = 30 * 24 * time.Hour

	DefaultWorkerLockTTL     = 2 * time.Minute
	DefaultWorkerScanTimeout = time.Minute
	DefaultWorkerMetricsPort = 9091
)

// ApplyDefaults fills every zero-value field in cfg with the default.
// Explicitly set fields are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.HTTP.Host == "" {
		cfg.Server.HTTP.Host = DefaultHTTPHost
	}
	if cfg.Server.HTTP.Port == 0 {
		cfg.Server.HTTP.Port = DefaultHTTPPort
	}
	if cfg.Server.HTTP.ReadTimeout == 0 {
		cfg.Server.HTTP.ReadTimeout = DefaultHTTPReadTimeout
	}
	if cfg.Server.HTTP.WriteTimeout == 0 {
		cfg.Server.HTTP.WriteTimeout = DefaultHTTPWriteTimeout
	}
	if cfg.Server.HTTP.ShutdownTimeout == 0 {
		cfg.Server.HTTP.ShutdownTimeout = DefaultHTTPShutdownTimeout
	}

	// ── Database ──────────────────────────────────────────────────────────────
	pg := &cfg.Database.Postgres
	if pg.Host == "" {
		pg.Host = DefaultDBHost
	}
	if pg.Port == 0 {
		pg.Port = DefaultDBPort
	}
	if pg.DBName == "" {
		pg.DBName = DefaultDBName
	}
	if pg.SSLMode == "" {
		pg.SSLMode = DefaultDBSSLMode
	}
	if pg.MaxOpenConns == 0 {
		pg.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if pg.MaxIdleConns == 0 {
		pg.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if pg.MigrationPath == "" {
		pg.MigrationPath = DefaultMigrationPath
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Redis.Mode == "" {
		cfg.Cache.Redis.Mode = DefaultRedisMode
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Messaging ─────────────────────────────────────────────────────────────
	k := &cfg.Messaging.Kafka
	if len(k.Brokers) == 0 {
		k.Brokers = []string{DefaultKafkaBroker}
	}
	if k.ConsumerGroup == "" {
		k.ConsumerGroup = DefaultKafkaConsumerGroup
	}
	if k.AutoOffsetReset == "" {
		k.AutoOffsetReset = "earliest"
	}
	if k.ScanRequestTopic == "" {
		k.ScanRequestTopic = DefaultScanRequestTopic
	}
	if k.OpportunityTopic == "" {
		k.OpportunityTopic = DefaultOpportunityTopic
	}
	if k.DeadLetterTopic == "" {
		k.DeadLetterTopic = DefaultDeadLetterTopic
	}

	// ── Monitoring ────────────────────────────────────────────────────────────
	if cfg.Monitoring.Log.Level == "" {
		cfg.Monitoring.Log.Level = DefaultLogLevel
	}
	if cfg.Monitoring.Log.Format == "" {
		cfg.Monitoring.Log.Format = DefaultLogFormat
	}
	if cfg.Monitoring.Prometheus.Namespace == "" {
		cfg.Monitoring.Prometheus.Namespace = DefaultMetricsNamespace
	}
	if cfg.Monitoring.Prometheus.Path == "" {
		cfg.Monitoring.Prometheus.Path = DefaultMetricsPath
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	e := &cfg.Engine
	if e.ScanWindow == 0 {
		e.ScanWindow = DefaultScanWindow
	}
	if e.MaxConcurrency == 0 {
		e.MaxConcurrency = DefaultEngineConcurrency
	}
	if e.RecipientTimeout == 0 {
		e.RecipientTimeout = DefaultRecipientTimeout
	}
	if e.TimingStrategy == "" {
		e.TimingStrategy = TimingFixedOffset
	}
	if e.PurchaseLeadTime == 0 {
		e.PurchaseLeadTime = DefaultPurchaseLeadTime
	}
	if e.DefaultAdvanceNoticeDays == 0 {
		e.DefaultAdvanceNoticeDays = DefaultAdvanceNoticeDays
	}
	if e.DefaultBudgetMin == 0 && e.DefaultBudgetMax == 0 {
		e.DefaultBudgetMin = DefaultBudgetMin
		e.DefaultBudgetMax = DefaultBudgetMax
	}
	if e.MessageLookback == 0 {
		e.MessageLookback = DefaultMessageLookback
	}
	if e.InteractionWindow == 0 {
		e.InteractionWindow = DefaultInteractionWindow
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.LockTTL == 0 {
		cfg.Worker.LockTTL = DefaultWorkerLockTTL
	}
	if cfg.Worker.ScanTimeout == 0 {
		cfg.Worker.ScanTimeout = DefaultWorkerScanTimeout
	}
	if cfg.Worker.MetricsPort == 0 {
		cfg.Worker.MetricsPort = DefaultWorkerMetricsPort
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
