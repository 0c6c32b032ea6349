package core

import "time"

// Role identifies the producer of a message within a conversation.
type Role string

const (
	// RoleUser marks a message authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a message authored by the model.
	RoleAssistant Role = "assistant"
	// RoleSystem marks an instruction message injected by the application.
	RoleSystem Role = "system"
	// RoleTool marks a message carrying the result of a tool execution.
	RoleTool Role = "tool"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return true
	}
	return false
}

// Metadata keys used on messages.
//
// Assistant messages that requested tool calls carry MetaToolCalls holding a
// []ToolCall recording every requested name+arguments. Tool messages carry
// MetaToolName naming the tool that produced the result; the name must refer
// to a tool actually invoked earlier in the same conversation.
const (
	MetaToolCalls = "tool_calls"
	MetaToolName  = "tool_name"
)

// Message is a single entry in a conversation history. Append order is
// semantic order. Metadata is free-form auxiliary data; see the Meta*
// constants for the keys written by the chat engine.
type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
