package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolbridge/toolbridge/tool"
)

func namedTool(name string, params map[string]any) tool.Tool {
	return tool.NewFunctionTool(name, "desc for "+name, params,
		func(_ context.Context, _ map[string]any) (any, error) { return nil, nil })
}

func TestDeclarationsPreservesOrder(t *testing.T) {
	tools := []tool.Tool{
		namedTool("zeta", map[string]any{"type": "object", "properties": map[string]any{}}),
		namedTool("alpha", map[string]any{"type": "object", "properties": map[string]any{}}),
	}

	defs := Declarations(tools)
	require.Len(t, defs, 2)
	assert.Equal(t, "zeta", defs[0].Function.Name)
	assert.Equal(t, "alpha", defs[1].Function.Name)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "desc for zeta", defs[0].Function.Description)
}

func TestDeclarationsNormalizesEnvelope(t *testing.T) {
	defs := Declarations([]tool.Tool{namedTool("bare", map[string]any{})})
	require.Len(t, defs, 1)

	params := defs[0].Function.Parameters
	assert.Equal(t, "object", params["type"])
	assert.Equal(t, map[string]any{}, params["properties"])
	assert.Equal(t, []string{}, params["required"])
}

func TestDeclarationsRequiredDefaultsToEmpty(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"q": map[string]any{"type": "string"},
		},
	}
	defs := Declarations([]tool.Tool{namedTool("search", params)})

	req, ok := defs[0].Function.Parameters["required"].([]string)
	require.True(t, ok)
	assert.Empty(t, req)

	// Source map untouched
	_, present := params["required"]
	assert.False(t, present)
}

func TestDeclarationsKeepsDeclaredRequired(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{"type": "string"},
		},
		"required": []string{"city"},
	}
	defs := Declarations([]tool.Tool{namedTool("weather", params)})
	assert.Equal(t, []string{"city"}, defs[0].Function.Parameters["required"])
}

func TestDeclarationsEmpty(t *testing.T) {
	assert.Empty(t, Declarations(nil))
}
