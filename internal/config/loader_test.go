package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  http:
    host: "127.0.0.1"
    port: 8081
database:
  postgres:
    host: "db.internal"
    port: 5432
    user: "autogift"
    password: "secret"
    dbname: "gifts"
cache:
  enabled: true
  ttl: 10m
  redis:
    addr: "localhost:6379"
messaging:
  enabled: true
  kafka:
    brokers: ["localhost:9092"]
    consumer_group: "group"
engine:
  scan_window: 720h
  max_concurrency: 12
  timing_strategy: recipient_preference
monitoring:
  log:
    level: debug
    format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(WithConfigPath(path))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.HTTP.Host)
	assert.Equal(t, 8081, cfg.Server.HTTP.Port)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "gifts", cfg.Database.Postgres.DBName)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Messaging.Kafka.Brokers)
	assert.Equal(t, 720*time.Hour, cfg.Engine.ScanWindow)
	assert.Equal(t, 12, cfg.Engine.MaxConcurrency)
	assert.Equal(t, TimingRecipientPreference, cfg.Engine.TimingStrategy)
	assert.Equal(t, "debug", cfg.Monitoring.Log.Level)
	// defaults fill the rest
	assert.Equal(t, DefaultPurchaseLeadTime, cfg.Engine.PurchaseLeadTime)
	assert.Equal(t, DefaultOpportunityTopic, cfg.Messaging.Kafka.OpportunityTopic)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(WithConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "invalid_yaml: [")
	_, err := Load(WithConfigPath(path))
	assert.ErrorIs(t, err, ErrConfigParseError)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, `
server:
  http:
    port: 70000
`)
	_, err := Load(WithConfigPath(path))
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("AUTOGIFT_SERVER_HTTP_PORT", "9999")
	t.Setenv("AUTOGIFT_DATABASE_POSTGRES_HOST", "db-host")

	cfg, err := Load(WithConfigPath(path))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.HTTP.Port)
	assert.Equal(t, "db-host", cfg.Database.Postgres.Host)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("AUTOGIFT_ENGINE_MAX_CONCURRENCY", "16")
	t.Setenv("AUTOGIFT_ENGINE_TIMING_STRATEGY", "recipient_preference")
	t.Setenv("AUTOGIFT_MONITORING_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Engine.MaxConcurrency)
	assert.Equal(t, TimingRecipientPreference, cfg.Engine.TimingStrategy)
	assert.Equal(t, "warn", cfg.Monitoring.Log.Level)
	assert.Equal(t, DefaultHTTPPort, cfg.Server.HTTP.Port)
}

func TestWatch_InvokesCallbackOnChange(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	var port atomic.Int64
	require.NoError(t, Watch(path, func(c *Config) {
		port.Store(int64(c.Server.HTTP.Port))
	}, nil))

	updated := `
server:
  http:
    port: 8099
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	assert.Eventually(t, func() bool { return port.Load() == 8099 }, 5*time.Second, 50*time.Millisecond)
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {}, nil)
	assert.ErrorIs(t, err, ErrConfigParseError)
}

//Personal.AI order the ending
