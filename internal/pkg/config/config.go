// Package config loads service configuration from an optional YAML file and
// LOCKSMITH_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Service string `mapstructure:"service"`
	Env     string `mapstructure:"env"`
	Listen  string `mapstructure:"listen"`

	// RedisAddr enables the Redis-backed lock manager and payment cache.
	// Empty selects the in-process lock manager (single-node only).
	RedisAddr string `mapstructure:"redis-addr"`

	// PostgresDSN enables the SQL repository. Empty selects the in-memory
	// repository.
	PostgresDSN string `mapstructure:"postgres-dsn"`

	LockWait  time.Duration `mapstructure:"lock-wait"`
	LockLease time.Duration `mapstructure:"lock-lease"`
	CacheTTL  time.Duration `mapstructure:"cache-ttl"`
}

// Load reads locksmith.yaml from the working directory when present and
// overlays LOCKSMITH_* environment variables on top of defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("service", "locksmith")
	v.SetDefault("env", "dev")
	v.SetDefault("listen", ":8080")
	v.SetDefault("redis-addr", "")
	v.SetDefault("postgres-dsn", "")
	v.SetDefault("lock-wait", 10*time.Second)
	v.SetDefault("lock-lease", 30*time.Second)
	v.SetDefault("cache-ttl", 5*time.Minute)

	v.SetEnvPrefix("LOCKSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("locksmith")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen address is required")
	}
	if c.LockWait <= 0 {
		return fmt.Errorf("config: lock-wait must be positive")
	}
	if c.LockLease <= 0 {
		return fmt.Errorf("config: lock-lease must be positive")
	}
	if c.LockLease <= c.LockWait {
		return fmt.Errorf("config: lock-lease must exceed lock-wait")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("config: cache-ttl must be positive")
	}
	return nil
}
