// Package tool implements the function / tool calling subsystem: named,
// schema-described capabilities executed on behalf of a model, with schema
// validated arguments and consistent error handling. The Registry owns the
// authoritative tool set; the chat engine dispatches model tool-call intents
// through it and never crashes on a failing tool.
package tool

import (
	"context"
	"errors"
	"fmt"
)

// Tool defines a callable capability exposed to the model.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case recommended) and descriptions
//   - Define a minimal JSON-schema-like parameter object
//     (type:"object", properties, required)
//   - Handle errors gracefully
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the LLM to help it decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool. Arguments have already been coerced to the
	// declared parameter types by the Registry.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// Sentinel errors for registry-level failures.
var (
	// ErrDuplicateTool is returned when registering a name that already exists.
	ErrDuplicateTool = errors.New("tool: duplicate tool name")
	// ErrToolNotFound is returned when executing an unregistered name.
	ErrToolNotFound = errors.New("tool: tool not found")
)

// ArgumentError reports a model-supplied argument that is missing or cannot
// be coerced to its declared type, or an otherwise invalid argument payload.
type ArgumentError struct {
	Tool    string `json:"tool"`
	Field   string `json:"field,omitempty"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e *ArgumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("tool %s: invalid argument %q: %s", e.Tool, e.Field, e.Message)
	}
	return fmt.Sprintf("tool %s: invalid arguments: %s", e.Tool, e.Message)
}

// ExecutionError wraps a failure inside a tool handler. The registry turns
// it into a ToolResult with the error field set; it never aborts a chat turn.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s: execution failed: %v", e.Tool, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ExecutionError) Unwrap() error { return e.Err }
