package config

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type dotenvConfig struct {
	path string
}

// DotEnvOption is a functional option for configuring the dotenv module.
type DotEnvOption func(*dotenvConfig)

// WithDotEnvPath sets a custom path to the .env file.
func WithDotEnvPath(path string) DotEnvOption {
	return func(cfg *dotenvConfig) {
		cfg.path = path
	}
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) (bool, error) {
	err := godotenv.Load(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// NewDotEnvModule loads environment variables from a .env file.
// By default, loads from ".env" in the current directory.
// Loading happens synchronously when the module is created so that the
// viper module sees the variables.
func NewDotEnvModule(opts ...DotEnvOption) fx.Option {
	cfg := &dotenvConfig{path: ".env"}
	for _, opt := range opts {
		opt(cfg)
	}

	loaded, loadErr := LoadDotEnv(cfg.path)

	return fx.Module("dotenv",
		fx.Invoke(func(lc fx.Lifecycle, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					switch {
					case loadErr != nil:
						logger.Warn("failed to load .env file", zap.String("path", cfg.path), zap.Error(loadErr))
					case loaded:
						logger.Info("loaded .env file", zap.String("path", cfg.path))
					default:
						logger.Debug("no .env file loaded", zap.String("path", cfg.path))
					}
					return nil
				},
			})
		}),
	)
}
