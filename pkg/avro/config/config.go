// Package config loads the avro section of the application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/compatibility"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/encoding"
)

const (
	defaultRegistryTimeout     = 30 * time.Second
	defaultRegistryRetries     = 3
	defaultRetryInterval       = 100 * time.Millisecond
	defaultLogThrottleInterval = 5 * time.Minute
)

type Config struct {
	// Framing is "single-object" or "confluent".
	Framing string `mapstructure:"framing"`
	// CompatibilityLevel is the default level of the local schema store.
	CompatibilityLevel string               `mapstructure:"compatibility-level"`
	SchemaRegistry     SchemaRegistryConfig `mapstructure:"schema-registry"`
	// LogThrottleInterval limits repeated decode failure warnings.
	LogThrottleInterval time.Duration `mapstructure:"log-throttle-interval"`
}

type SchemaRegistryConfig struct {
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max-retries"`
	InitialInterval time.Duration `mapstructure:"initial-interval"`
}

// Enabled reports whether a schema registry URL is configured.
func (c SchemaRegistryConfig) Enabled() bool {
	return c.URL != ""
}

// FramingValue returns the parsed framing. Call after Validate.
func (c Config) FramingValue() encoding.Framing {
	return encoding.Framing(c.Framing)
}

// Level returns the parsed compatibility level. Call after Validate.
func (c Config) Level() compatibility.Level {
	level, _ := compatibility.ParseLevel(c.CompatibilityLevel)
	return level
}

func NewAvroConfigModule() fx.Option {
	return fx.Provide(
		newConfig,
	)
}

func newConfig(v *viper.Viper, logger *zap.Logger) (Config, error) {
	cfg, err := Load(v)
	if err != nil {
		return cfg, err
	}

	logger.Info("loaded avro config", zap.Any("config", cfg))
	return cfg, nil
}

// Load reads, defaults and validates the avro section of v. A missing
// section yields the defaults.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("avro"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load avro config: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid avro config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Framing == "" {
		if cfg.SchemaRegistry.Enabled() {
			cfg.Framing = string(encoding.ConfluentFraming)
		} else {
			cfg.Framing = string(encoding.SingleObjectFraming)
		}
	}
	if cfg.CompatibilityLevel == "" {
		cfg.CompatibilityLevel = string(compatibility.Backward)
	}
	if cfg.SchemaRegistry.Timeout == 0 {
		cfg.SchemaRegistry.Timeout = defaultRegistryTimeout
	}
	if cfg.SchemaRegistry.MaxRetries == 0 {
		cfg.SchemaRegistry.MaxRetries = defaultRegistryRetries
	}
	if cfg.SchemaRegistry.InitialInterval == 0 {
		cfg.SchemaRegistry.InitialInterval = defaultRetryInterval
	}
	if cfg.LogThrottleInterval == 0 {
		cfg.LogThrottleInterval = defaultLogThrottleInterval
	}
}

func validateConfig(cfg *Config) error {
	framing, err := encoding.ParseFraming(strings.ToLower(cfg.Framing))
	if err != nil {
		return err
	}
	cfg.Framing = string(framing)

	level, err := compatibility.ParseLevel(cfg.CompatibilityLevel)
	if err != nil {
		return err
	}
	cfg.CompatibilityLevel = string(level)

	if framing == encoding.ConfluentFraming && !cfg.SchemaRegistry.Enabled() {
		return fmt.Errorf("framing %s requires schema-registry.url", framing)
	}
	if cfg.SchemaRegistry.MaxRetries < 0 {
		return fmt.Errorf("schema-registry.max-retries must not be negative, got %d", cfg.SchemaRegistry.MaxRetries)
	}
	if cfg.SchemaRegistry.Timeout < 0 {
		return fmt.Errorf("schema-registry.timeout must not be negative, got %s", cfg.SchemaRegistry.Timeout)
	}
	if cfg.LogThrottleInterval < 0 {
		return fmt.Errorf("log-throttle-interval must not be negative, got %s", cfg.LogThrottleInterval)
	}
	return nil
}
