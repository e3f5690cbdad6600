package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	avroconfig "github.com/Sokol111/ecommerce-avro/pkg/avro/config"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/encoding"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/registry"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/serde"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
	"github.com/Sokol111/ecommerce-avro/pkg/core/logger"
)

type codecFlags struct {
	schemaFile string
	readerFile string
	input      string
	output     string
	hex        bool
	framed     bool
	topic      string
}

func (f *codecFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.schemaFile, "schema", "s", "", "Writer schema file (required)")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Input file (defaults to stdin)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (defaults to stdout)")
	cmd.Flags().BoolVar(&f.hex, "hex", false, "Binary data is hex encoded")
	cmd.Flags().BoolVar(&f.framed, "framed", false, "Binary data carries the framing configured by avro.framing")
	_ = cmd.MarkFlagRequired("schema")
}

// stack holds the serde components built from the avro configuration.
type stack struct {
	store    registry.Store
	registry registry.ConfluentRegistry
	cfg      avroconfig.Config
}

func (a *app) stack(ctx context.Context) (*stack, error) {
	log := logger.Get(ctx)
	cfg, err := avroconfig.Load(a.v)
	if err != nil {
		return nil, err
	}

	st := &stack{
		cfg: cfg,
		store: registry.NewStore(
			registry.WithDefaultLevel(cfg.Level()),
			registry.WithStoreLogger(log.Named("schema-store")),
		),
	}

	if cfg.SchemaRegistry.Enabled() {
		conf := schemaregistry.NewConfig(cfg.SchemaRegistry.URL)
		conf.RequestTimeoutMs = int(cfg.SchemaRegistry.Timeout.Milliseconds())
		client, err := schemaregistry.NewClient(conf)
		if err != nil {
			return nil, fmt.Errorf("failed to create schema registry client: %w", err)
		}
		st.registry = registry.NewConfluentRegistry(client,
			registry.WithMaxRetries(cfg.SchemaRegistry.MaxRetries),
			registry.WithInitialInterval(cfg.SchemaRegistry.InitialInterval),
			registry.WithLogger(log.Named("schema-registry")),
		)
	}
	return st, nil
}

func (s *stack) Close() error {
	if s.registry != nil {
		return s.registry.Close()
	}
	return nil
}

func newEncodeCmd(a *app) *cobra.Command {
	flags := &codecFlags{}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Convert Avro JSON to Avro binary",
		Long: `Convert an Avro JSON document to Avro binary.

With --framed the output is prefixed with the framing configured by
avro.framing: single-object uses the schema fingerprint, confluent registers
the schema under "{topic}-value".

Example:
  echo '{"id":"a","qty":2}' | avrotool encode --schema order.avsc --hex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, err := readSchema(flags.schemaFile)
			if err != nil {
				return err
			}
			input, err := readInput(cmd, flags.input)
			if err != nil {
				return err
			}
			v, err := encoding.UnmarshalJSON(writer, bytes.TrimSpace(input))
			if err != nil {
				return err
			}

			var data []byte
			if flags.framed {
				data, err = a.encodeFramed(cmd.Context(), flags.topic, writer, v)
			} else {
				data, err = encoding.MarshalBinary(writer, v)
			}
			if err != nil {
				return err
			}

			logger.Get(cmd.Context()).Info("encoded", zap.Int("bytes", len(data)))
			if flags.hex {
				data = append([]byte(hex.EncodeToString(data)), '\n')
			}
			return writeOutput(cmd, flags.output, data)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.topic, "topic", "t", "", "Topic used to name the registry subject")

	return cmd
}

func (a *app) encodeFramed(ctx context.Context, topic string, writer schema.Schema, v value.Value) ([]byte, error) {
	st, err := a.stack(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	serializer, err := serde.NewSerializer(st.cfg.FramingValue(), st.store, st.registry)
	if err != nil {
		return nil, err
	}
	if serializer.Framing() == encoding.ConfluentFraming && topic == "" {
		return nil, fmt.Errorf("--topic is required for %s framing", encoding.ConfluentFraming)
	}
	return serializer.Serialize(topic, writer, v)
}

func newDecodeCmd(a *app) *cobra.Command {
	flags := &codecFlags{}

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Convert Avro binary to Avro JSON",
		Long: `Convert Avro binary to an Avro JSON document.

With --reader the data is resolved from the writer schema into the reader
schema. With --framed the writer schema is taken from the framing header;
--schema is then registered locally so single-object data can be read.

Example:
  avrotool decode --schema order_v1.avsc --reader order_v2.avsc --input order.bin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, err := readSchema(flags.schemaFile)
			if err != nil {
				return err
			}
			var reader schema.Schema
			if flags.readerFile != "" {
				if reader, err = readSchema(flags.readerFile); err != nil {
					return err
				}
			}

			data, err := readInput(cmd, flags.input)
			if err != nil {
				return err
			}
			if flags.hex {
				if data, err = hex.DecodeString(string(bytes.TrimSpace(data))); err != nil {
					return fmt.Errorf("invalid hex input: %w", err)
				}
			}

			var out schema.Schema
			var v value.Value
			if flags.framed {
				out, v, err = a.decodeFramed(cmd.Context(), writer, reader, data)
			} else {
				out, v, err = decodeRaw(writer, reader, data)
			}
			if err != nil {
				return err
			}

			text, err := encoding.MarshalJSON(out, v)
			if err != nil {
				return err
			}
			return writeOutput(cmd, flags.output, append(text, '\n'))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.readerFile, "reader", "r", "", "Reader schema file")

	return cmd
}

func decodeRaw(writer, reader schema.Schema, data []byte) (schema.Schema, value.Value, error) {
	if reader == nil {
		v, err := encoding.UnmarshalBinary(writer, data)
		return writer, v, err
	}
	v, err := encoding.ResolveBinary(reader, writer, data)
	return reader, v, err
}

func (a *app) decodeFramed(ctx context.Context, writer, reader schema.Schema, data []byte) (schema.Schema, value.Value, error) {
	st, err := a.stack(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = st.Close() }()

	if _, err := st.store.Register(writer); err != nil {
		return nil, nil, err
	}

	opts := []serde.DeserializerOption{
		serde.WithStore(st.store),
		serde.WithThrottler(logger.NewLogThrottler(logger.Get(ctx), st.cfg.LogThrottleInterval)),
	}
	if st.registry != nil {
		opts = append(opts, serde.WithConfluentRegistry(st.registry))
	}
	deserializer := serde.NewDeserializer(opts...)

	if reader == nil {
		msg, err := deserializer.Deserialize(data)
		return msg.Writer, msg.Value, err
	}
	msg, err := deserializer.DeserializeInto(reader, data)
	return reader, msg.Value, err
}
