package model

import (
	"context"
	"fmt"

	"github.com/toolbridge/toolbridge/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by the chat engine.
// When AllowTools is false the Tools slice is ignored and the model must not
// emit tool calls.
type Request struct {
	Messages   []core.Message   `json:"messages"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	AllowTools bool             `json:"allow_tools"`
}

// Response is the model's answer: free text, zero or more tool call intents,
// or both. Returning zero tool calls under auto tool choice is valid.
type Response struct {
	Text         string          `json:"text"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the chat engine needs to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// CapabilityError wraps transport/auth/quota failures from a model provider
// so callers can distinguish them from local errors.
type CapabilityError struct {
	Provider string
	Err      error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("model capability error (%s): %v", e.Provider, e.Err)
}

// Unwrap exposes the underlying provider error.
func (e *CapabilityError) Unwrap() error { return e.Err }
