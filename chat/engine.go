// Package chat implements the orchestration protocol at the heart of
// ToolBridge: given one user message, decide whether to consult the model,
// whether to dispatch tool calls, and fold tool results back into the
// conversation before producing the final answer.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/toolbridge/toolbridge/conversation"
	"github.com/toolbridge/toolbridge/core"
	"github.com/toolbridge/toolbridge/logging"
	"github.com/toolbridge/toolbridge/model"
	"github.com/toolbridge/toolbridge/tool"
)

// ErrEmptyMessage rejects chat requests whose message is empty or blank.
var ErrEmptyMessage = errors.New("chat: message must not be empty")

// DefaultModelTimeout bounds a single model call. The model is the dominant
// latency source; tool execution is assumed fast and is not separately bounded.
const DefaultModelTimeout = 30 * time.Second

// Request is one inbound chat turn.
type Request struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	UseTools       bool   `json:"use_tools"`
}

// Response is the outcome of a chat turn. ToolsUsed is nil (serialized as
// absent) when no tools were invoked.
type Response struct {
	Response       string   `json:"response"`
	ConversationID string   `json:"conversation_id"`
	ToolsUsed      []string `json:"tools_used,omitempty"`
}

// Option customizes Engine construction.
type Option func(*Engine)

// WithModelTimeout overrides the per-model-call timeout.
func WithModelTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.modelTimeout = d
		}
	}
}

// Engine drives the chat protocol. It is safe for concurrent use: turns on
// different conversations proceed in parallel while turns on the same
// conversation are serialized by a keyed lock, so tool-call/tool-result
// pairings in a history can never interleave.
type Engine struct {
	store        conversation.Store
	registry     *tool.Registry
	model        model.Model
	logger       logging.Logger
	modelTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine wires the store, registry and model capability together.
func NewEngine(store conversation.Store, registry *tool.Registry, m model.Model, logger logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	e := &Engine{
		store:        store,
		registry:     registry,
		model:        m,
		logger:       logger,
		modelTimeout: DefaultModelTimeout,
		locks:        make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Chat executes one turn of the protocol:
//
//	resolve conversation -> model first pass -> {dispatch tools -> model
//	final pass} -> done
//
// An unknown conversation id is silently recovered by creating a new
// conversation. Messages already appended are not rolled back when a later
// step fails; the conversation keeps the user message even if the reply
// never materializes.
func (e *Engine) Chat(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	convID := e.resolveConversation(req.ConversationID)
	unlock := e.lockConversation(convID)
	defer unlock()

	if err := e.store.Append(convID, core.RoleUser, req.Message, nil); err != nil {
		// Deleted between resolve and lock; start over with a fresh conversation.
		convID = e.store.Create()
		if err := e.store.Append(convID, core.RoleUser, req.Message, nil); err != nil {
			return nil, fmt.Errorf("chat: append user message: %w", err)
		}
	}

	if !req.UseTools {
		resp, err := e.generate(ctx, convID, nil)
		if err != nil {
			return nil, err
		}
		return e.finish(convID, resp.Text, nil)
	}

	declarations := Declarations(e.registry.List())
	first, err := e.generate(ctx, convID, declarations)
	if err != nil {
		return nil, err
	}
	if len(first.ToolCalls) == 0 {
		return e.finish(convID, first.Text, nil)
	}

	toolsUsed, err := e.dispatch(ctx, convID, first)
	if err != nil {
		return nil, err
	}

	final, err := e.generate(ctx, convID, nil)
	if err != nil {
		return nil, err
	}
	return e.finish(convID, final.Text, toolsUsed)
}

// resolveConversation reuses the given id when it exists, otherwise creates
// a fresh conversation. Unknown ids never surface as errors to callers.
func (e *Engine) resolveConversation(id string) string {
	if id != "" {
		if _, ok := e.store.Get(id); ok {
			return id
		}
		e.logger.Info("chat.conversation.recovered", "requested_id", id)
	}
	return e.store.Create()
}

// generate sends the full current history to the model, with tool schemas
// attached only when declarations is non-empty. The call is bounded by the
// engine's model timeout.
func (e *Engine) generate(ctx context.Context, convID string, declarations []model.ToolDefinition) (*model.Response, error) {
	conv, ok := e.store.Get(convID)
	if !ok {
		return nil, fmt.Errorf("chat: conversation %s disappeared mid-turn", convID)
	}

	genCtx, cancel := context.WithTimeout(ctx, e.modelTimeout)
	defer cancel()

	start := time.Now()
	resp, err := e.model.Generate(genCtx, model.Request{
		Messages:   conv.Messages,
		Tools:      declarations,
		AllowTools: len(declarations) > 0,
	})
	if err != nil {
		e.logger.Error("chat.model.error", "conversation_id", convID, "error", err.Error())
		return nil, fmt.Errorf("chat: model generation failed: %w", err)
	}
	e.logger.Info("chat.model.response",
		"conversation_id", convID,
		"duration_ms", time.Since(start).Milliseconds(),
		"tool_calls", len(resp.ToolCalls),
	)
	return resp, nil
}

// dispatch records the assistant's tool-call intent and executes every call
// sequentially in the order the model returned. A failing call contributes
// no tool message but its name still lands in the tools-used report, so
// failures are surfaced to the model only through the missing content, never
// silently dropped from the report.
func (e *Engine) dispatch(ctx context.Context, convID string, resp *model.Response) ([]string, error) {
	calls := make([]core.ToolCall, len(resp.ToolCalls))
	copy(calls, resp.ToolCalls)
	meta := map[string]any{core.MetaToolCalls: calls}
	if err := e.store.Append(convID, core.RoleAssistant, resp.Text, meta); err != nil {
		return nil, fmt.Errorf("chat: append assistant tool-call message: %w", err)
	}

	toolsUsed := make([]string, 0, len(calls))
	for _, call := range calls {
		toolsUsed = append(toolsUsed, call.Name)

		result, err := e.registry.Execute(ctx, call.Name, call.Arguments)
		if err != nil {
			e.logger.Warn("chat.tool.failed", "conversation_id", convID, "tool", call.Name, "error", err.Error())
			continue
		}

		toolMeta := map[string]any{core.MetaToolName: call.Name}
		if err := e.store.Append(convID, core.RoleTool, stringifyResult(result), toolMeta); err != nil {
			return nil, fmt.Errorf("chat: append tool result: %w", err)
		}
	}
	return toolsUsed, nil
}

// finish appends the final assistant message and shapes the response.
func (e *Engine) finish(convID, text string, toolsUsed []string) (*Response, error) {
	if err := e.store.Append(convID, core.RoleAssistant, text, nil); err != nil {
		return nil, fmt.Errorf("chat: append assistant message: %w", err)
	}
	if len(toolsUsed) == 0 {
		toolsUsed = nil
	}
	return &Response{Response: text, ConversationID: convID, ToolsUsed: toolsUsed}, nil
}

// lockConversation serializes turns per conversation id. Lock entries are
// retained for the process lifetime, matching the store's own growth.
func (e *Engine) lockConversation(id string) func() {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// stringifyResult renders a tool result for the tool-role message: strings
// pass through, structured values are JSON encoded.
func stringifyResult(result any) string {
	switch v := result.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}
