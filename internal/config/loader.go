package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "AUTOGIFT"

var (
	// ErrConfigFileNotFound is returned when an explicit config path does not exist.
	ErrConfigFileNotFound = errors.New("config: file not found")
	// ErrConfigParseError is returned when the config file cannot be parsed.
	ErrConfigParseError = errors.New("config: parse error")
	// ErrConfigInvalid is returned when the populated Config fails Validate.
	ErrConfigInvalid = errors.New("config: invalid configuration")
)

// loadOptions collects Load parameters.
type loadOptions struct {
	configPath string
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

// WithConfigPath makes Load read the YAML file at path before applying
// environment overrides.
func WithConfigPath(path string) LoadOption {
	return func(o *loadOptions) { o.configPath = path }
}

// newViper builds a Viper instance with YAML file type, the AUTOGIFT_ env
// prefix and a "." → "_" key replacer, so "database.postgres.host" resolves
// to AUTOGIFT_DATABASE_POSTGRES_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// registerKeys seeds viper with every key so AutomaticEnv can override keys
// that are absent from the file.  Zero values keep ApplyDefaults in charge of
// the real defaults.
func registerKeys(v *viper.Viper) {
	keys := map[string]interface{}{
		"server.http.host":                   "",
		"server.http.port":                   0,
		"database.postgres.host":             "",
		"database.postgres.port":             0,
		"database.postgres.user":             "",
		"database.postgres.password":         "",
		"database.postgres.dbname":           "",
		"database.postgres.sslmode":          "",
		"database.postgres.migration_path":   "",
		"cache.enabled":                      false,
		"cache.ttl":                          "0s",
		"cache.redis.mode":                   "",
		"cache.redis.addr":                   "",
		"cache.redis.password":               "",
		"cache.redis.db":                     0,
		"messaging.enabled":                  false,
		"messaging.kafka.brokers":            []string{},
		"messaging.kafka.consumer_group":     "",
		"monitoring.log.level":               "",
		"monitoring.log.format":              "",
		"monitoring.prometheus.enabled":      false,
		"engine.scan_window":                 "0s",
		"engine.max_concurrency":             0,
		"engine.timing_strategy":             "",
		"engine.purchase_lead_time":          "0s",
		"engine.default_advance_notice_days": 0,
	}
	for k, val := range keys {
		v.SetDefault(k, val)
	}
}

// Load builds a Config from an optional YAML file plus AUTOGIFT_* environment
// overrides, applies defaults and validates the result.
func Load(opts ...LoadOption) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	v := newViper()
	if o.configPath != "" {
		if _, err := os.Stat(o.configPath); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, o.configPath)
		}
		v.SetConfigFile(o.configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
		}
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from AUTOGIFT_* environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load()
}

// unmarshalAndFinalize decodes viper state, applies defaults and validates.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Watch monitors configPath and calls onChange with the re-parsed Config on
// every write.  Invalid intermediate states are reported to onError (if
// non-nil) and do not reach onChange.  Watch does not block.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParseError, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

//Personal.AI order the ending
