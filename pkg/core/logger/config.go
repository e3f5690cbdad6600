package logger

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level specifies the minimum logging level.
	Level zapcore.Level `mapstructure:"level"`

	// Development enables development mode with console encoding and human-readable timestamps.
	// In production mode (false), JSON encoding is used unless Encoding overrides it.
	Development bool `mapstructure:"development"`

	// Encoding is "json" or "console". Empty selects the mode default.
	Encoding string `mapstructure:"encoding"`

	// OutputPaths is a list of URLs or file paths to write logging output to.
	// If empty, defaults to stderr.
	OutputPaths []string `mapstructure:"output-paths"`

	// ErrorOutputPaths is a list of URLs or file paths to write internal logger errors to.
	// If empty, defaults to stderr.
	ErrorOutputPaths []string `mapstructure:"error-output-paths"`

	// StacktraceLevel sets the minimum level at which stacktraces are captured.
	// Defaults to ErrorLevel.
	StacktraceLevel zapcore.Level `mapstructure:"stacktrace-level"`
}

// DefaultConfig is used when the logger section is absent.
func DefaultConfig() Config {
	return Config{
		Level:           zapcore.InfoLevel,
		StacktraceLevel: zapcore.ErrorLevel,
	}
}

func (c Config) Validate() error {
	switch c.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("encoding must be 'json' or 'console', got: %s", c.Encoding)
	}

	if err := validatePaths(c.OutputPaths, "output-paths"); err != nil {
		return err
	}

	if err := validatePaths(c.ErrorOutputPaths, "error-output-paths"); err != nil {
		return err
	}

	return nil
}

func validatePaths(paths []string, fieldName string) error {
	for i, path := range paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("%s[%d] cannot be empty or whitespace", fieldName, i)
		}
	}
	return nil
}

// NewConfig reads the logger section of v.
func NewConfig(v *viper.Viper) (Config, error) {
	sub := v.Sub("logger")
	if sub == nil {
		return DefaultConfig(), nil
	}

	// Levels are parsed from strings so that "warn" and "WARN" both work.
	var rawCfg struct {
		Level            string   `mapstructure:"level"`
		Development      bool     `mapstructure:"development"`
		Encoding         string   `mapstructure:"encoding"`
		OutputPaths      []string `mapstructure:"output-paths"`
		ErrorOutputPaths []string `mapstructure:"error-output-paths"`
		StacktraceLevel  string   `mapstructure:"stacktrace-level"`
	}

	if err := sub.Unmarshal(&rawCfg); err != nil {
		return Config{}, fmt.Errorf("failed to load logger config: %w", err)
	}

	level, err := parseLevel(rawCfg.Level, zapcore.InfoLevel)
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level '%s': %w", rawCfg.Level, err)
	}

	stacktraceLevel, err := parseLevel(rawCfg.StacktraceLevel, zapcore.ErrorLevel)
	if err != nil {
		return Config{}, fmt.Errorf("invalid stacktrace level '%s': %w", rawCfg.StacktraceLevel, err)
	}

	cfg := Config{
		Level:            level,
		Development:      rawCfg.Development,
		Encoding:         rawCfg.Encoding,
		OutputPaths:      rawCfg.OutputPaths,
		ErrorOutputPaths: rawCfg.ErrorOutputPaths,
		StacktraceLevel:  stacktraceLevel,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("logger configuration validation failed: %w", err)
	}

	return cfg, nil
}

func parseLevel(s string, fallback zapcore.Level) (zapcore.Level, error) {
	if s == "" {
		return fallback, nil
	}
	return zapcore.ParseLevel(s)
}
