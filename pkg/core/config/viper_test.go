package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ReadsFile(t *testing.T) {
	// Arrange
	path := writeFile(t, "config.yaml", `
avro:
  framing: single-object
  schema-registry:
    url: http://localhost:8081
`)

	// Act
	v, err := Load(FilePath(path))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, path, v.ConfigFileUsed())
	assert.Equal(t, "single-object", v.GetString("avro.framing"))
	assert.Equal(t, "http://localhost:8081", v.GetString("avro.schema-registry.url"))
}

func TestLoad_JSONFile(t *testing.T) {
	// Arrange
	path := writeFile(t, "config.json", `{"logger": {"level": "debug"}}`)

	// Act
	v, err := Load(FilePath(path))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "debug", v.GetString("logger.level"))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	// Arrange
	path := writeFile(t, "config.yaml", "avro:\n  schema-registry:\n    max-retries: 3\n")
	t.Setenv("AVRO_SCHEMA_REGISTRY_MAX_RETRIES", "7")

	// Act
	v, err := Load(FilePath(path))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 7, v.GetInt("avro.schema-registry.max-retries"))
}

func TestLoad_NoFile(t *testing.T) {
	// Arrange
	t.Setenv("LOGGER_LEVEL", "warn")

	// Act
	v, err := Load("")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, v.ConfigFileUsed())
	assert.Equal(t, "warn", v.GetString("logger.level"))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: "/nonexistent/config.yaml"},
		{name: "invalid yaml", path: writeFile(t, "bad.yaml", "a: [[[\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			v, err := Load(FilePath(tt.path))

			// Assert
			require.Error(t, err)
			assert.Nil(t, v)
			assert.Contains(t, err.Error(), "failed to read config file")
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(ConfigFileEnv, "/etc/avro/config.yaml")

	assert.Equal(t, FilePath("/etc/avro/config.yaml"), resolveConfigPath(&viperConfig{}))
	assert.Equal(t, FilePath(""), resolveConfigPath(&viperConfig{noConfigFile: true}))

	custom := "./local.yaml"
	assert.Equal(t, FilePath(custom), resolveConfigPath(&viperConfig{configPath: &custom}))
}
