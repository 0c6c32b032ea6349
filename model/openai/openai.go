// Package openai implements model.Model on top of the OpenAI Chat
// Completions API including function/tool calling. It adapts ToolBridge's
// normalized Request/Response structures into the SDK's message format and
// back.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/toolbridge/toolbridge/core"
	"github.com/toolbridge/toolbridge/model"
)

// Options configure the OpenAI model adapter. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Model wraps the OpenAI Chat Completions API behind the generic
// model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1024,
	}
}

// Generate implements model.Model (non-streaming).
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Messages),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if req.AllowTools && len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, tdef := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        tdef.Function.Name,
					Description: openai.String(tdef.Function.Description),
					Parameters:  tdef.Function.Parameters,
				},
			}
		}
		params.Tools = tools // tool choice stays "auto": zero calls is a valid answer
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &model.CapabilityError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &model.CapabilityError{Provider: "openai", Err: fmt.Errorf("no choices returned")}
	}

	choice := resp.Choices[0]
	out := &model.Response{
		Text:         choice.Message.Content,
		FinishReason: string(choice.FinishReason),
	}
	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, &model.CapabilityError{
					Provider: "openai",
					Err:      fmt.Errorf("malformed tool call arguments for %s: %w", tc.Function.Name, err),
				}
			}
		}
		out.ToolCalls = append(out.ToolCalls, core.ToolCall{Name: tc.Function.Name, Arguments: args})
	}
	return out, nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info { return Info() }

// Info returns adapter metadata shared by all instances.
func Info() model.Info {
	return model.Info{Name: "openai-chat-completions", Provider: "openai", SupportsTools: true}
}

// failedToolPlaceholder answers a tool call whose execution produced no tool
// message, keeping the replayed history valid: the API rejects an assistant
// tool_calls message whose ids are not all answered.
const failedToolPlaceholder = "[no result: tool execution failed]"

// openToolCall is an emitted tool_call id awaiting its tool message.
type openToolCall struct {
	id   string
	name string
}

// buildMessages converts the conversation history into OpenAI chat messages.
// Assistant messages with tool_calls metadata become tool-calling assistant
// messages with synthetic ids; each following tool message consumes the
// open id of the tool that produced it. Ids still open when the next
// non-tool message arrives (a call that failed and left no result) are
// answered with a placeholder tool message.
func buildMessages(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	var open []openToolCall
	seq := 0

	flushOpen := func() {
		for _, oc := range open {
			out = append(out, openai.ToolMessage(failedToolPlaceholder, oc.id))
		}
		open = nil
	}

	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			flushOpen()
			out = append(out, openai.SystemMessage(msg.Content))
		case core.RoleUser:
			flushOpen()
			out = append(out, openai.UserMessage(msg.Content))
		case core.RoleAssistant:
			flushOpen()
			calls := toolCallsFromMetadata(msg.Metadata)
			if len(calls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(calls))
			for _, tc := range calls {
				id := fmt.Sprintf("call_%d_%s", seq, tc.Name)
				seq++
				argsJSON, err := json.Marshal(tc.Arguments)
				if err != nil {
					argsJSON = []byte("{}")
				}
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   id,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: string(argsJSON),
					},
				})
				open = append(open, openToolCall{id: id, name: tc.Name})
			}
			assistant := &openai.ChatCompletionAssistantMessageParam{
				Role:      "assistant",
				ToolCalls: toolCalls,
			}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})
		case core.RoleTool:
			name, _ := msg.Metadata[core.MetaToolName].(string)
			idx := -1
			for i, oc := range open {
				if oc.name == name {
					idx = i
					break
				}
			}
			if idx < 0 {
				// Orphan tool message; surface it as user context rather than
				// sending an uncorrelated tool message the API would reject.
				out = append(out, openai.UserMessage(fmt.Sprintf("[%s result] %s", name, msg.Content)))
				continue
			}
			id := open[idx].id
			open = append(open[:idx], open[idx+1:]...)
			out = append(out, openai.ToolMessage(msg.Content, id))
		}
	}
	flushOpen()
	return out
}

func toolCallsFromMetadata(metadata map[string]any) []core.ToolCall {
	if metadata == nil {
		return nil
	}
	calls, _ := metadata[core.MetaToolCalls].([]core.ToolCall)
	return calls
}
