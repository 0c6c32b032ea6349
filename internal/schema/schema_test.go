package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "number"},
			"n": map[string]any{"type": "integer", "default": 7},
			"s": map[string]any{"type": "string"},
			"b": map[string]any{"type": "boolean"},
		},
		"required": []string{"x"},
	}
}

func TestCoerceSuccess(t *testing.T) {
	out, err := Coerce(map[string]any{"x": 2, "s": "hi", "b": true}, numberSchema())
	require.NoError(t, err)
	assert.Equal(t, 2.0, out["x"])
	assert.Equal(t, "hi", out["s"])
	assert.Equal(t, true, out["b"])
	// Default filled for absent optional parameter
	assert.Equal(t, 7, out["n"])
}

func TestCoerceParsesStrings(t *testing.T) {
	out, err := Coerce(map[string]any{"x": "3.5", "n": "12", "b": "true"}, numberSchema())
	require.NoError(t, err)
	assert.Equal(t, 3.5, out["x"])
	assert.Equal(t, 12, out["n"])
	assert.Equal(t, true, out["b"])
}

func TestCoerceIntegralFloat(t *testing.T) {
	out, err := Coerce(map[string]any{"x": 1, "n": 5.0}, numberSchema())
	require.NoError(t, err)
	assert.Equal(t, 5, out["n"])

	_, err = Coerce(map[string]any{"x": 1, "n": 5.5}, numberSchema())
	assert.Error(t, err)
}

func TestCoerceMissingRequired(t *testing.T) {
	_, err := Coerce(map[string]any{}, numberSchema())
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "x", vErr.Field)
	assert.Contains(t, vErr.Message, "required")
}

func TestCoerceUncoercible(t *testing.T) {
	_, err := Coerce(map[string]any{"x": "not-a-number"}, numberSchema())
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "x", vErr.Field)
}

func TestCoerceRequiredAnySlice(t *testing.T) {
	// Mirrors the shape produced by JSON decoding a schema
	s := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"q": map[string]any{"type": "string"},
		},
		"required": []any{"q"},
	}
	_, err := Coerce(map[string]any{}, s)
	assert.Error(t, err)

	out, err := Coerce(map[string]any{"q": "ok"}, s)
	require.NoError(t, err)
	assert.Equal(t, "ok", out["q"])
}

func TestCoercePassesThroughExtraFields(t *testing.T) {
	out, err := Coerce(map[string]any{"x": 1, "extra": []int{1, 2}}, numberSchema())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, out["extra"])
}

type sampleArgs struct {
	City  string `json:"city" jsonschema:"description=City name"`
	Limit *int   `json:"limit,omitempty"`
}

func TestFromStruct(t *testing.T) {
	s := FromStruct(sampleArgs{})
	assert.Equal(t, "object", s["type"])

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "limit")

	req := requiredFields(s)
	assert.Contains(t, req, "city")
	assert.NotContains(t, req, "limit")
}
