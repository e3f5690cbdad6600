package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type moduleOptions struct {
	config *Config
}

// Option configures the logging module.
type Option func(*moduleOptions)

// WithLoggerConfig provides a static Config instead of reading viper.
func WithLoggerConfig(cfg Config) Option {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// NewZapLoggingModule provides a configured *zap.Logger and routes fx events
// through it.
func NewZapLoggingModule(opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var configProvider fx.Option
	if o.config != nil {
		configProvider = fx.Supply(*o.config)
	} else {
		configProvider = fx.Provide(func(v *viper.Viper) (Config, error) { return NewConfig(v) })
	}

	return fx.Module("logger",
		configProvider,
		fx.Provide(provideLogger),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
}

func provideLogger(lc fx.Lifecycle, conf Config) (*zap.Logger, error) {
	logger, _, err := New(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("logger initialized",
		zap.String("level", conf.Level.String()),
		zap.Bool("development", conf.Development),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return Sync(logger)
		},
	})

	return logger, nil
}

// Sync flushes logger, ignoring the errors returned for unsyncable outputs
// such as a terminal.
func Sync(logger *zap.Logger) error {
	err := logger.Sync()
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && (errors.Is(pathErr.Err, syscall.EINVAL) || errors.Is(pathErr.Err, syscall.ENOTTY)) {
		return nil
	}
	return err
}
