// Package avro wires the schema store, schema registry client and serde
// components into an fx application.
package avro

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/config"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/fingerprint"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/registry"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/serde"
	"github.com/Sokol111/ecommerce-avro/pkg/core/logger"
)

type moduleOptions struct {
	config *config.Config
	client schemaregistry.Client
}

// Option configures the avro module.
type Option func(*moduleOptions)

// WithConfig provides a static Config instead of reading viper.
func WithConfig(cfg config.Config) Option {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// WithSchemaRegistryClient uses client instead of dialing
// schema-registry.url. Useful with the "mock://" client in tests.
func WithSchemaRegistryClient(client schemaregistry.Client) Option {
	return func(o *moduleOptions) {
		o.client = client
	}
}

// NewAvroModule provides the fingerprint cache, schema store, Confluent
// registry adapter (when a registry is configured), serializer and
// deserializer.
func NewAvroModule(opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var configProvider fx.Option
	if o.config != nil {
		configProvider = fx.Supply(*o.config)
	} else {
		configProvider = config.NewAvroConfigModule()
	}

	return fx.Module("avro",
		configProvider,
		fx.Provide(
			fingerprint.NewCache,
			provideStore,
			func(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (registry.ConfluentRegistry, error) {
				return provideConfluentRegistry(lc, cfg, log, o.client)
			},
			provideSerializer,
			provideDeserializer,
		),
	)
}

func provideStore(cfg config.Config, cache fingerprint.Cache, log *zap.Logger) registry.Store {
	return registry.NewStore(
		registry.WithDefaultLevel(cfg.Level()),
		registry.WithFingerprintCache(cache),
		registry.WithStoreLogger(log.Named("schema-store")),
	)
}

// provideConfluentRegistry returns a nil registry when no registry is
// configured.
func provideConfluentRegistry(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, client schemaregistry.Client) (registry.ConfluentRegistry, error) {
	if client == nil {
		if !cfg.SchemaRegistry.Enabled() {
			log.Info("schema registry not configured")
			return nil, nil
		}

		conf := schemaregistry.NewConfig(cfg.SchemaRegistry.URL)
		conf.RequestTimeoutMs = int(cfg.SchemaRegistry.Timeout.Milliseconds())

		var err error
		client, err = schemaregistry.NewClient(conf)
		if err != nil {
			return nil, fmt.Errorf("failed to create schema registry client: %w", err)
		}
	}

	reg := registry.NewConfluentRegistry(client,
		registry.WithMaxRetries(cfg.SchemaRegistry.MaxRetries),
		registry.WithInitialInterval(cfg.SchemaRegistry.InitialInterval),
		registry.WithLogger(log.Named("schema-registry")),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing schema registry client")
			return reg.Close()
		},
	})

	return reg, nil
}

func provideSerializer(cfg config.Config, store registry.Store, reg registry.ConfluentRegistry) (serde.Serializer, error) {
	return serde.NewSerializer(cfg.FramingValue(), store, reg)
}

func provideDeserializer(cfg config.Config, store registry.Store, reg registry.ConfluentRegistry, log *zap.Logger) serde.Deserializer {
	opts := []serde.DeserializerOption{
		serde.WithStore(store),
		serde.WithThrottler(logger.NewLogThrottler(log.Named("avro-deserializer"), cfg.LogThrottleInterval)),
	}
	if reg != nil {
		opts = append(opts, serde.WithConfluentRegistry(reg))
	}
	return serde.NewDeserializer(opts...)
}
