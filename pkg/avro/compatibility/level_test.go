package compatibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

var (
	userV1 = `{"type":"record","name":"User","fields":[{"name":"a","type":"int"}]}`
	userV2 = `{"type":"record","name":"User","fields":[{"name":"a","type":"int"},{"name":"b","type":"string","default":"x"}]}`
	// userV3 requires b, which version 1 data lacks.
	userV3 = `{"type":"record","name":"User","fields":[{"name":"a","type":"int"},{"name":"b","type":"string"}]}`
	// userV4 requires c, which no earlier data carries.
	userV4 = `{"type":"record","name":"User","fields":[{"name":"a","type":"int"},{"name":"b","type":"string","default":"x"},{"name":"c","type":"long"}]}`
)

func history(texts ...string) []schema.Schema {
	out := make([]schema.Schema, 0, len(texts))
	for _, t := range texts {
		out = append(out, schema.MustParse(t))
	}
	return out
}

func TestCheckLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		candidate string
		history   []string
		want      Compatibility
	}{
		{"backward adds field with default", Backward, userV2, []string{userV1}, Compatible},
		{"backward adds required field", Backward, userV4, []string{userV1, userV2}, Incompatible},
		{"forward adds required field", Forward, userV4, []string{userV1, userV2}, Compatible},
		{"full adds required field", Full, userV4, []string{userV2}, Incompatible},
		{"full adds field with default", Full, userV2, []string{userV1}, Compatible},
		{"backward checks only the latest", Backward, userV3, []string{userV1, userV2}, Compatible},
		{"backward transitive checks all", BackwardTransitive, userV3, []string{userV1, userV2}, Incompatible},
		{"forward transitive", ForwardTransitive, userV3, []string{userV1, userV2}, Compatible},
		{"full transitive", FullTransitive, userV3, []string{userV1, userV2}, Incompatible},
		{"none accepts anything", None, `"string"`, []string{userV1}, Compatible},
		{"empty history", FullTransitive, userV4, nil, Compatible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			result, err := CheckLevel(tt.level, schema.MustParse(tt.candidate), history(tt.history...))

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Compatibility, result.String())
		})
	}
}

func TestCheckLevel_UnknownLevel(t *testing.T) {
	_, err := CheckLevel(Level("SIDEWAYS"), schema.MustParse(userV1), nil)
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"BACKWARD", Backward},
		{"backward", Backward},
		{"full-transitive", FullTransitive},
		{" Forward_Transitive ", ForwardTransitive},
		{"none", None},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("bogus")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}
