package chat

import (
	"github.com/toolbridge/toolbridge/model"
	"github.com/toolbridge/toolbridge/tool"
)

// Declarations converts registry tool definitions into the model-facing
// function-call schema. Pure and stateless: tool order is preserved so the
// schema output is deterministic, and `required` defaults to an empty list
// when a definition declares no mandatory parameters. The source parameter
// maps are never mutated.
func Declarations(tools []tool.Tool) []model.ToolDefinition {
	out := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		out = append(out, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  normalizeParameters(t.Parameters()),
			},
		})
	}
	return out
}

// normalizeParameters shallow-copies the schema and guarantees the object
// envelope the function-call format expects: type, properties, required.
func normalizeParameters(params map[string]any) map[string]any {
	out := make(map[string]any, len(params)+3)
	for k, v := range params {
		out[k] = v
	}
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	if req, ok := out["required"]; !ok || req == nil {
		out["required"] = []string{}
	}
	return out
}
