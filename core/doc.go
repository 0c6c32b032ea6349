// Package core defines the shared data model of ToolBridge: conversation
// message histories, tool call intents surfaced by a model, and tool
// execution results. Higher-level packages (tool, conversation, model, chat)
// all speak in these types so no provider-specific shape leaks across
// package boundaries.
package core
