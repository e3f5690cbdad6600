package core

import (
	"time"

	"github.com/Sokol111/ecommerce-avro/pkg/core/config"
	"github.com/Sokol111/ecommerce-avro/pkg/core/logger"
	"go.uber.org/fx"
)

type coreOptions struct {
	loggerConfig       *logger.Config
	configPath         *string
	disableDotEnv      bool
	disableViperConfig bool
}

// Option is a functional option for configuring the core module.
type Option func(*coreOptions)

// WithLoggerConfig provides a static logger Config (useful for tests).
// When set, the logger configuration will not be loaded from viper.
func WithLoggerConfig(cfg logger.Config) Option {
	return func(opts *coreOptions) {
		opts.loggerConfig = &cfg
	}
}

// WithConfigPath reads configuration from path instead of CONFIG_FILE.
func WithConfigPath(path string) Option {
	return func(opts *coreOptions) {
		opts.configPath = &path
	}
}

// WithoutEnvFile disables loading of .env file.
func WithoutEnvFile() Option {
	return func(opts *coreOptions) {
		opts.disableDotEnv = true
	}
}

// WithoutConfigFile disables loading of config file.
// Useful for tests where configuration is provided via options.
func WithoutConfigFile() Option {
	return func(opts *coreOptions) {
		opts.disableViperConfig = true
	}
}

// NewCoreModule provides config and logger.
//
// Example usage:
//
//	// Production - loads config from CONFIG_FILE and the environment
//	core.NewCoreModule()
//
//	// Testing - with static configs
//	core.NewCoreModule(
//	    core.WithLoggerConfig(logger.DefaultConfig()),
//	    core.WithoutEnvFile(),
//	    core.WithoutConfigFile(),
//	)
func NewCoreModule(opts ...Option) fx.Option {
	cfg := &coreOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		fx.StartTimeout(time.Minute),
		fx.StopTimeout(time.Minute),

		dotEnvModule(cfg),
		viperModule(cfg),
		loggerModule(cfg),
	)
}

func dotEnvModule(cfg *coreOptions) fx.Option {
	if cfg.disableDotEnv {
		return fx.Options()
	}
	return config.NewDotEnvModule()
}

func viperModule(cfg *coreOptions) fx.Option {
	switch {
	case cfg.disableViperConfig:
		return config.NewViperModule(config.WithoutConfigFile())
	case cfg.configPath != nil:
		return config.NewViperModule(config.WithConfigPath(*cfg.configPath))
	default:
		return config.NewViperModule()
	}
}

func loggerModule(cfg *coreOptions) fx.Option {
	if cfg.loggerConfig != nil {
		return logger.NewZapLoggingModule(logger.WithLoggerConfig(*cfg.loggerConfig))
	}
	return logger.NewZapLoggingModule()
}
