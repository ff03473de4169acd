package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AutoGift-Intelligence/internal/config"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	return config.NewDefaultConfig()
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"server port low", func(c *config.Config) { c.Server.HTTP.Port = -1 }, "server.http.port"},
		{"server port high", func(c *config.Config) { c.Server.HTTP.Port = 65536 }, "server.http.port"},
		{"missing db host", func(c *config.Config) { c.Database.Postgres.Host = "" }, "database.postgres.host"},
		{"db port", func(c *config.Config) { c.Database.Postgres.Port = 70000 }, "database.postgres.port"},
		{"missing db name", func(c *config.Config) { c.Database.Postgres.DBName = "" }, "database.postgres.dbname"},
		{"db max conns", func(c *config.Config) { c.Database.Postgres.MaxOpenConns = 0 }, "max_open_conns"},
		{"redis addr", func(c *config.Config) {
			c.Cache.Enabled = true
			c.Cache.Redis.Addr = ""
		}, "cache.redis.addr"},
		{"redis cluster addrs", func(c *config.Config) {
			c.Cache.Enabled = true
			c.Cache.Redis.Mode = "cluster"
		}, "cache.redis.addrs"},
		{"redis mode", func(c *config.Config) {
			c.Cache.Enabled = true
			c.Cache.Redis.Mode = "ring"
		}, "cache.redis.mode"},
		{"kafka brokers", func(c *config.Config) {
			c.Messaging.Enabled = true
			c.Messaging.Kafka.Brokers = nil
		}, "messaging.kafka.brokers"},
		{"scan window", func(c *config.Config) { c.Engine.ScanWindow = -time.Hour }, "engine.scan_window"},
		{"concurrency", func(c *config.Config) { c.Engine.MaxConcurrency = 64 }, "engine.max_concurrency"},
		{"timing strategy", func(c *config.Config) { c.Engine.TimingStrategy = "whenever" }, "engine.timing_strategy"},
		{"lead time", func(c *config.Config) { c.Engine.PurchaseLeadTime = 0 }, "engine.purchase_lead_time"},
		{"advance notice", func(c *config.Config) { c.Engine.DefaultAdvanceNoticeDays = 0 }, "default_advance_notice_days"},
		{"budget", func(c *config.Config) { c.Engine.DefaultBudgetMax = 1 }, "default budget"},
		{"log level", func(c *config.Config) { c.Monitoring.Log.Level = "trace" }, "monitoring.log.level"},
		{"log format", func(c *config.Config) { c.Monitoring.Log.Format = "text" }, "monitoring.log.format"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_Validate_DisabledSectionsSkipped(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Cache.Enabled = false
	cfg.Cache.Redis.Mode = "bogus"
	cfg.Messaging.Enabled = false
	cfg.Messaging.Kafka.Brokers = nil
	assert.NoError(t, cfg.Validate())
}

//Personal.AI order the ending
