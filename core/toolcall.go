package core

// ToolCall is a model-produced request to invoke a named tool with the given
// arguments. It is not guaranteed to reference a registered tool or to
// satisfy the tool's schema; the dispatch layer validates both.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the outcome of executing a ToolCall. At most one of Result
// and Error is meaningful per invocation.
type ToolResult struct {
	ToolName string `json:"tool_name"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Failed reports whether the invocation produced an error instead of a result.
func (r ToolResult) Failed() bool { return r.Error != "" }
