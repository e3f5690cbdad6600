package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv_SetsVariables(t *testing.T) {
	// Arrange
	path := writeFile(t, ".env", "AVRO_TEST_DOTENV_VALUE=from-file\n")
	t.Setenv("AVRO_TEST_DOTENV_VALUE", "")
	require.NoError(t, os.Unsetenv("AVRO_TEST_DOTENV_VALUE"))

	// Act
	loaded, err := LoadDotEnv(path)

	// Assert
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "from-file", os.Getenv("AVRO_TEST_DOTENV_VALUE"))
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	// Arrange
	path := writeFile(t, ".env", "AVRO_TEST_DOTENV_KEEP=from-file\n")
	t.Setenv("AVRO_TEST_DOTENV_KEEP", "from-env")

	// Act
	loaded, err := LoadDotEnv(path)

	// Assert
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "from-env", os.Getenv("AVRO_TEST_DOTENV_KEEP"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	loaded, err := LoadDotEnv("/nonexistent/.env")

	require.NoError(t, err)
	assert.False(t, loaded)
}
