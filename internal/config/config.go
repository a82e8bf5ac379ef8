// Package config loads pcdiag settings from defaults, an optional YAML
// file, a .env file and PCDIAG_* environment variables, in increasing
// order of precedence. Command-line flags bound by the CLI win over all.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/collector"
)

// EnvPrefix is the prefix of environment overrides: PCDIAG_SERVER_ADDR.
const EnvPrefix = "PCDIAG"

// Config is the typed view of the settings.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Logging LoggingConfig `mapstructure:"logging"`
	Collect CollectConfig `mapstructure:"collect"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	// RateLimit is the sustained per-client request rate; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	Burst     int     `mapstructure:"burst" validate:"gte=1"`
	// MaxBodyBytes caps uploaded scan documents.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"gte=1024"`
}

type StoreConfig struct {
	// Path of the SQLite database. Empty keeps scans in memory.
	Path string `mapstructure:"path"`
}

type CatalogConfig struct {
	// Path of a YAML catalog extension. Empty uses the built-in tables.
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type CollectConfig struct {
	SampleInterval time.Duration `mapstructure:"sample_interval" validate:"gt=0"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// CollectorConfig converts the collect section into the collector settings.
func (c CollectConfig) CollectorConfig() collector.Config {
	cfg := collector.DefaultConfig()
	cfg.SampleInterval = c.SampleInterval
	cfg.Timeout = c.Timeout
	return cfg
}

// SetDefaults registers every key with its default value. Keys must be
// known to viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.burst", 20)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("store.path", "pcdiag.db")
	v.SetDefault("catalog.path", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("collect.sample_interval", "1s")
	v.SetDefault("collect.timeout", "30s")
}

// Load reads configuration from file and environment variables. A missing
// .env file or default config file is not an error; a missing explicit
// configPath is.
func Load(configPath string) (*viper.Viper, error) {
	// .env only seeds variables that are not already set.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("pcdiag")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/pcdiag")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}
