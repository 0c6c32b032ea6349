// Package anthropic implements model.Model on top of the Anthropic Messages
// API with tool_use / tool_result content blocks.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/toolbridge/toolbridge/core"
	"github.com/toolbridge/toolbridge/model"
)

// Options configures the Anthropic model adapter (model id, temperature,
// max tokens, API key).
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model
// interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       string(anthropic.ModelClaude3_5Sonnet20241022),
		Temperature: 0.7,
		MaxTokens:   1024,
	}
}

// Generate implements model.Model (non-streaming).
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(m.opts.Model),
		Messages:    buildMessages(req.Messages),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}
	if system := systemBlocks(req.Messages); len(system) > 0 {
		params.System = system
	}
	if req.AllowTools && len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &model.CapabilityError{Provider: "anthropic", Err: err}
	}

	out := &model.Response{FinishReason: string(resp.StopReason)}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := map[string]any{}
			raw, err := json.Marshal(toolBlock.Input)
			if err == nil && len(raw) > 0 && string(raw) != "null" {
				if err := json.Unmarshal(raw, &args); err != nil {
					return nil, &model.CapabilityError{
						Provider: "anthropic",
						Err:      fmt.Errorf("malformed tool input for %s: %w", toolBlock.Name, err),
					}
				}
			}
			out.ToolCalls = append(out.ToolCalls, core.ToolCall{Name: toolBlock.Name, Arguments: args})
		}
	}
	return out, nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "anthropic",
		SupportsTools: true,
	}
}

// failedToolPlaceholder answers a tool_use id whose execution produced no
// tool message. The Messages API requires a tool_result for every tool_use,
// so calls that failed are answered with an is_error placeholder.
const failedToolPlaceholder = "[no result: tool execution failed]"

// openToolCall is an emitted tool_use id awaiting its tool_result.
type openToolCall struct {
	id   string
	name string
}

// buildMessages converts the conversation history to Anthropic messages.
// Assistant tool calls become tool_use blocks with synthetic ids; the tool
// messages that follow are folded into a single user message of tool_result
// blocks, as the Messages API requires. Ids still unanswered when that user
// message is emitted get placeholder tool_result blocks.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	var open []openToolCall
	seq := 0

	var results []anthropic.ContentBlockParamUnion
	flushResults := func() {
		for _, oc := range open {
			results = append(results, anthropic.NewToolResultBlock(oc.id, failedToolPlaceholder, true))
		}
		open = nil
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			continue // handled separately via params.System
		case core.RoleUser:
			flushResults()
			if msg.Content != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			}
		case core.RoleAssistant:
			flushResults()
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			if calls, ok := msg.Metadata[core.MetaToolCalls].([]core.ToolCall); ok {
				for _, tc := range calls {
					id := fmt.Sprintf("toolu_%d_%s", seq, tc.Name)
					seq++
					blocks = append(blocks, anthropic.NewToolUseBlock(id, tc.Arguments, tc.Name))
					open = append(open, openToolCall{id: id, name: tc.Name})
				}
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
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
				results = append(results, anthropic.NewTextBlock(fmt.Sprintf("[%s result] %s", name, msg.Content)))
				continue
			}
			id := open[idx].id
			open = append(open[:idx], open[idx+1:]...)
			results = append(results, anthropic.NewToolResultBlock(id, msg.Content, false))
		}
	}
	flushResults()
	return out
}

// systemBlocks extracts system messages into Anthropic system text blocks.
func systemBlocks(messages []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, msg := range messages {
		if msg.Role == core.RoleSystem && msg.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: msg.Content})
		}
	}
	return blocks
}

// buildTools converts tool definitions to the Anthropic tool format.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, tdef := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if params := tdef.Function.Parameters; params != nil {
			if properties, ok := params["properties"]; ok {
				inputSchema.Properties = properties
			}
			switch required := params["required"].(type) {
			case []string:
				inputSchema.Required = required
			case []any:
				for _, r := range required {
					if s, ok := r.(string); ok {
						inputSchema.Required = append(inputSchema.Required, s)
					}
				}
			}
		}
		out[i] = anthropic.ToolUnionParamOfTool(inputSchema, tdef.Function.Name)
	}
	return out
}
