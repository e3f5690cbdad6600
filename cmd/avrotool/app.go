package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/core/config"
	"github.com/Sokol111/ecommerce-avro/pkg/core/logger"
)

// app carries the state shared by all commands.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configFile string
	envFile    string
	v          *viper.Viper
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "avrotool",
		Short:         "Inspect, check and convert Avro schemas and data",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync(logger.Get(cmd.Context()))
		},
	}

	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (defaults to $"+config.ConfigFileEnv+")")
	flags.StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before configuration")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newCanonicalCmd(a),
		newFingerprintCmd(a),
		newCompatCmd(a),
		newEncodeCmd(a),
		newDecodeCmd(a),
		newGenerateCmd(a),
	)

	return rootCmd
}

// init loads configuration and attaches the logger to the command context.
func (a *app) init(cmd *cobra.Command) error {
	if _, err := config.LoadDotEnv(a.envFile); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	path := a.configFile
	if path == "" {
		path = os.Getenv(config.ConfigFileEnv)
	}

	v, err := config.Load(config.FilePath(path))
	if err != nil {
		return err
	}
	if err := v.BindPFlag("logger.level", cmd.Flags().Lookup("log-level")); err != nil {
		return err
	}
	a.v = v

	logCfg, err := logger.NewConfig(v)
	if err != nil {
		return err
	}
	// The CLI is quiet unless a level is configured.
	logCfg.Level = zapcore.WarnLevel
	if level := v.GetString("logger.level"); level != "" {
		if logCfg.Level, err = zapcore.ParseLevel(level); err != nil {
			return fmt.Errorf("invalid log level '%s': %w", level, err)
		}
	}
	if len(logCfg.OutputPaths) == 0 {
		logCfg.OutputPaths = []string{"stderr"}
	}
	logCfg.Encoding = "console"

	log, _, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	cmd.SetContext(logger.With(cmd.Context(), log.Named("avrotool")))
	return nil
}

// readSchema parses a schema document from path.
func readSchema(path string) (schema.Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	s, err := schema.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	return s, nil
}

// readInput reads path, or the command input when path is empty or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path) //nolint:gosec // user supplied path
}

// writeOutput writes data to path, or the command output when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
