package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/core"
)

// Anthropic implements core.CompletionProvider on top of the official SDK.
type Anthropic struct {
	client    anthropic.Client
	maxTokens int64
}

func NewAnthropic(cfg *config.AnthropicConfig) *Anthropic {
	return &Anthropic{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		maxTokens: int64(cfg.MaxTokens),
	}
}

func (a *Anthropic) Complete(ctx context.Context, req core.CompletionRequest) (core.Completion, error) {
	params, err := buildParams(req, a.maxTokens)
	if err != nil {
		return core.Completion{}, err
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return core.Completion{}, fmt.Errorf("anthropic completion: %w", err)
	}

	return decodeMessage(*msg), nil
}

func (a *Anthropic) CompleteStream(ctx context.Context, req core.CompletionRequest, onDelta func(string) error) (core.Completion, error) {
	params, err := buildParams(req, a.maxTokens)
	if err != nil {
		return core.Completion{}, err
	}

	stream := a.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var final anthropic.Message
	for stream.Next() {
		event := stream.Current()
		if err := final.Accumulate(event); err != nil {
			return core.Completion{}, fmt.Errorf("accumulate stream: %w", err)
		}

		if ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if text := ev.Delta.AsTextDelta().Text; text != "" {
				if err := onDelta(text); err != nil {
					return core.Completion{}, err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return core.Completion{}, fmt.Errorf("anthropic stream: %w", err)
	}

	return decodeMessage(final), nil
}

func buildParams(req core.CompletionRequest, maxTokens int64) (anthropic.MessageNewParams, error) {
	messages, err := convertMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	tools, err := convertTools(req.Tools)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  messages,
		Tools:     tools,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return params, nil
}

func convertMessages(msgs []core.Message) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))

		case core.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				input, err := decodeArguments(call.Arguments)
				if err != nil {
					return nil, fmt.Errorf("tool call %s arguments: %w", call.Name, err)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, call.Name))
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))

		case core.RoleTool:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolResults))
			for _, res := range msg.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(res.ToolCallID, res.Content, res.IsError))
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewUserMessage(blocks...))

		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return out, nil
}

func convertTools(tools []core.Tool) ([]anthropic.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, def := range tools {
		schema, err := encodeSchema(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s schema: %w", def.Name, err)
		}

		tool := anthropic.ToolParam{
			Name:        def.Name,
			InputSchema: schema,
		}
		if def.Description != "" {
			tool.Description = anthropic.String(def.Description)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out, nil
}

func encodeSchema(raw json.RawMessage) (anthropic.ToolInputSchemaParam, error) {
	if len(raw) == 0 {
		return anthropic.ToolInputSchemaParam{Type: "object"}, nil
	}

	var schema anthropic.ToolInputSchemaParam
	if err := json.Unmarshal(raw, &schema); err != nil {
		return anthropic.ToolInputSchemaParam{}, err
	}
	if schema.Type == "" {
		schema.Type = "object"
	}
	return schema, nil
}

func decodeArguments(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, err
	}
	return input, nil
}

func decodeMessage(msg anthropic.Message) core.Completion {
	var text string
	var toolCalls []core.ToolCall
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "tool_use":
			toolCalls = append(toolCalls, core.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: json.RawMessage(block.Input),
			})
		}
	}

	return core.Completion{
		Message: core.Message{
			Role:      core.RoleAssistant,
			Content:   text,
			ToolCalls: toolCalls,
		},
		StopReason: string(msg.StopReason),
	}
}
