// Package config loads the engine's tunables from environment variables,
// an optional YAML file, and hardcoded defaults, in that order of
// precedence, following the teacher's viper-based loader.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds every tunable named in §6.4 plus the store path,
// logging, and metrics configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Lock    LockConfig    `mapstructure:"lock"`
}

// StoreConfig configures the local SQLite catalog store.
type StoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SyncConfig configures the sync engine and scheduler.
type SyncConfig struct {
	BatchSize               int           `mapstructure:"batch_size" validate:"gt=0"`
	PageSize                int           `mapstructure:"page_size" validate:"gt=0"`
	FullInterval            time.Duration `mapstructure:"full_interval" validate:"gt=0"`
	IncrementalInterval     time.Duration `mapstructure:"incremental_interval" validate:"gt=0"`
	PerFetchTimeout         time.Duration `mapstructure:"per_fetch_timeout" validate:"gt=0"`
	PerSyncDeadline         time.Duration `mapstructure:"per_sync_deadline" validate:"gt=0"`
	MaxRetryAttempts        int           `mapstructure:"max_retry_attempts" validate:"gt=0"`
	BackoffBase             time.Duration `mapstructure:"backoff_base" validate:"gt=0"`
	BackoffMax              time.Duration `mapstructure:"backoff_max" validate:"gt=0"`
	CircuitBreakerThreshold int           `mapstructure:"circuit_breaker_threshold" validate:"gt=0"`
	CircuitBreakerTimeout   time.Duration `mapstructure:"circuit_breaker_timeout" validate:"gt=0"`
}

// RemoteConfig configures the remote catalog API client.
type RemoteConfig struct {
	BaseURL          string  `mapstructure:"base_url" validate:"required"`
	RateLimitPerSec  float64 `mapstructure:"rate_limit_per_sec" validate:"gt=0"`
	RateLimitBurst   int     `mapstructure:"rate_limit_burst" validate:"gt=0"`
}

// LogConfig mirrors the teacher's pkg/logger configuration shape.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json text"`
	Output     string `mapstructure:"output" validate:"oneof=stdout stderr file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// MetricsConfig configures the Prometheus registry exposed by
// pkg/metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// LockConfig configures the optional cross-process single-flight lock.
type LockConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	RedisAddr  string        `mapstructure:"redis_addr"`
	LockKey    string        `mapstructure:"lock_key"`
	LeaseTTL   time.Duration `mapstructure:"lease_ttl"`
}

// LoadConfig loads configuration with defaults, then an optional YAML
// file, then environment variables, in ascending precedence — the same
// order the teacher's LoadConfig uses.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "./catalogsync.db")

	v.SetDefault("sync.batch_size", 100)
	v.SetDefault("sync.page_size", 100)
	v.SetDefault("sync.full_interval", "24h")
	v.SetDefault("sync.incremental_interval", "5m")
	v.SetDefault("sync.per_fetch_timeout", "30s")
	v.SetDefault("sync.per_sync_deadline", "30m")
	v.SetDefault("sync.max_retry_attempts", 3)
	v.SetDefault("sync.backoff_base", "2s")
	v.SetDefault("sync.backoff_max", "30s")
	v.SetDefault("sync.circuit_breaker_threshold", 5)
	v.SetDefault("sync.circuit_breaker_timeout", "60s")

	v.SetDefault("remote.base_url", "https://connect.example.com")
	v.SetDefault("remote.rate_limit_per_sec", 10.0)
	v.SetDefault("remote.rate_limit_burst", 20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("lock.enabled", false)
	v.SetDefault("lock.lock_key", "catalogsync:perform_sync")
	v.SetDefault("lock.lease_ttl", "30s")
}

var structValidator = validator.New()

// Validate runs field-level struct validation, the same
// `go-playground/validator/v10` the teacher uses for incoming request
// shapes, applied here to configuration instead.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return err
	}
	if c.Lock.Enabled && c.Lock.RedisAddr == "" {
		return fmt.Errorf("lock.redis_addr is required when lock.enabled is true")
	}
	if c.Log.Output == "file" && c.Log.FilePath == "" {
		return fmt.Errorf("log.file_path is required when log.output is \"file\"")
	}
	return nil
}
