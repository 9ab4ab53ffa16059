// Package anthropic provides a core.Gateway backed by the Anthropic Messages
// API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/agentloom/core"
)

// Options configures the Anthropic gateway (model id, temperature, max
// tokens, API key).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Gateway wraps the Anthropic Messages API behind core.Gateway.
type Gateway struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic gateway using the official client.
func New(optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Gateway{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic gateway from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Generate implements core.Gateway.
func (g *Gateway) Generate(ctx context.Context, req core.GenerateRequest) (*core.GenerateResponse, error) {
	resp, err := g.client.Messages.New(ctx, g.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var parts []core.Part

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			if text := block.AsText().Text; text != "" {
				parts = append(parts, core.TextPart{Text: text})
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := map[string]any{}
			if len(toolBlock.Input) > 0 {
				if err := json.Unmarshal(toolBlock.Input, &args); err != nil {
					args = map[string]any{"input": string(toolBlock.Input)}
				}
			}
			parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
				ID:   toolBlock.ID,
				Name: toolBlock.Name,
				Args: args,
			}})
		}
	}

	in, out := int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens)

	return &core.GenerateResponse{
		Prompt: core.Prompt{Role: core.RoleModel, Parts: parts},
		Usage:  &core.Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out},
	}, nil
}

// Info implements core.Gateway.
func (g *Gateway) Info() core.GatewayInfo {
	return core.GatewayInfo{Name: string(g.opts.Model), Provider: "anthropic"}
}

func (g *Gateway) buildParams(req core.GenerateRequest) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       g.opts.Model,
		Messages:    buildMessages(req.Prompts),
		MaxTokens:   g.opts.MaxTokens,
		Temperature: anthropic.Float(g.opts.Temperature),
	}

	if req.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemInstruction}}
	}

	if cfg := req.Config; cfg != nil {
		if cfg.Temperature != nil {
			params.Temperature = anthropic.Float(*cfg.Temperature)
		}
		if cfg.TopP != nil {
			params.TopP = anthropic.Float(*cfg.TopP)
		}
		if cfg.TopK != nil {
			params.TopK = anthropic.Int(int64(*cfg.TopK))
		}
		if cfg.MaxOutputTokens != nil {
			params.MaxTokens = int64(*cfg.MaxOutputTokens)
		}
		if len(cfg.StopSequences) > 0 {
			params.StopSequences = cfg.StopSequences
		}
	}

	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	return params
}

// buildMessages converts canonical prompts to Anthropic messages. Function
// responses travel as tool_result blocks inside a user message.
func buildMessages(prompts []core.Prompt) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	lastCallID := map[string]string{}

	for _, p := range prompts {
		var content []anthropic.ContentBlockParamUnion

		for _, part := range p.Parts {
			switch v := part.(type) {
			case core.TextPart:
				if v.Text != "" {
					content = append(content, anthropic.NewTextBlock(v.Text))
				}
			case core.FunctionCallPart:
				id := v.FunctionCall.ID
				if id == "" {
					id = fmt.Sprintf("toolu_%s_%d", v.FunctionCall.Name, len(messages))
				}
				lastCallID[v.FunctionCall.Name] = id
				content = append(content, anthropic.NewToolUseBlock(id, v.FunctionCall.Args, v.FunctionCall.Name))
			case core.FunctionResponsePart:
				fr := v.FunctionResponse
				id := fr.ID
				if id == "" {
					id = lastCallID[fr.Name]
				}
				body, _ := json.Marshal(fr.ResponseMap())
				content = append(content, anthropic.NewToolResultBlock(id, string(body), fr.Error != ""))
			}
		}

		if len(content) == 0 {
			continue
		}

		if p.Role == core.RoleModel {
			messages = append(messages, anthropic.NewAssistantMessage(content...))
		} else {
			messages = append(messages, anthropic.NewUserMessage(content...))
		}
	}

	return messages
}

// buildTools converts tool declarations to Anthropic tool params.
func buildTools(decls []core.ToolDeclaration) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(decls))

	for i, decl := range decls {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if params := decl.Parameters; params != nil {
			if properties, ok := params["properties"]; ok {
				inputSchema.Properties = properties
			}
			inputSchema.Required = requiredFields(params["required"])
		}

		tools[i] = anthropic.ToolUnionParamOfTool(inputSchema, decl.Name)
		if decl.Description != "" {
			tools[i].OfTool.Description = anthropic.String(decl.Description)
		}
	}

	return tools
}

func requiredFields(v any) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
