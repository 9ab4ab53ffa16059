// Package openai provides a core.Gateway backed by the OpenAI Chat
// Completions API, including function/tool calling.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentloom/core"
)

// Options configure the OpenAI gateway. Request level GenerationConfig
// values take precedence over these defaults.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Gateway wraps the OpenAI Chat Completions API behind core.Gateway.
type Gateway struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI gateway using the official client.
func New(optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := openai.NewClient(clientOpts...)

	return &Gateway{client: &client, opts: opts}
}

// NewFromClient creates a new OpenAI gateway from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
}

// Generate implements core.Gateway.
func (g *Gateway) Generate(ctx context.Context, req core.GenerateRequest) (*core.GenerateResponse, error) {
	params := g.buildParams(req)

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	msg := resp.Choices[0].Message
	parts := make([]core.Part, 0, len(msg.ToolCalls)+1)
	if msg.Content != "" {
		parts = append(parts, core.TextPart{Text: msg.Content})
	}
	for _, tc := range msg.ToolCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: decodeArgs(tc.Function.Arguments),
		}})
	}

	return &core.GenerateResponse{
		Prompt: core.Prompt{Role: core.RoleModel, Parts: parts},
		Usage: &core.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}, nil
}

// Info implements core.Gateway.
func (g *Gateway) Info() core.GatewayInfo {
	return core.GatewayInfo{Name: g.opts.Model, Provider: "openai"}
}

// buildParams assembles the request parameters including tool definitions.
func (g *Gateway) buildParams(req core.GenerateRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               g.opts.Model,
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	}

	if cfg := req.Config; cfg != nil {
		if cfg.Temperature != nil {
			params.Temperature = openai.Float(*cfg.Temperature)
		}
		if cfg.TopP != nil {
			params.TopP = openai.Float(*cfg.TopP)
		}
		if cfg.MaxOutputTokens != nil {
			params.MaxCompletionTokens = openai.Int(int64(*cfg.MaxOutputTokens))
		}
		if len(cfg.StopSequences) > 0 {
			params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: cfg.StopSequences}
		}
	}

	if len(req.Tools) == 0 {
		return params
	}

	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, decl := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        decl.Name,
				Description: openai.String(decl.Description),
				Parameters:  decl.Parameters,
			},
		}
	}
	params.Tools = tools

	return params
}

// buildMessages converts canonical prompts into chat messages. Function
// responses are emitted as tool messages right after the assistant turn that
// requested them; calls without a provider id get a synthetic one.
func buildMessages(req core.GenerateRequest) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(req.SystemInstruction))
	}

	ids := newCallIDs()

	for _, p := range req.Prompts {
		text := p.Text()

		switch p.Role {
		case core.RoleModel:
			calls := p.FunctionCalls()
			if len(calls) == 0 {
				messages = append(messages, openai.AssistantMessage(text))
				continue
			}
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(calls))
			for _, fc := range calls {
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   ids.assign(fc.ID, fc.Name),
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      fc.Name,
						Arguments: encodeArgs(fc.Args),
					},
				})
			}
			assistant := openai.ChatCompletionAssistantMessageParam{Role: "assistant", ToolCalls: toolCalls}
			if text != "" {
				assistant.Content.OfString = openai.String(text)
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		default:
			var responded bool
			for _, part := range p.Parts {
				fr, ok := part.(core.FunctionResponsePart)
				if !ok {
					continue
				}
				responded = true
				body, _ := json.Marshal(fr.FunctionResponse.ResponseMap())
				messages = append(messages, openai.ToolMessage(string(body), ids.resolve(fr.FunctionResponse.ID, fr.FunctionResponse.Name)))
			}
			if text != "" || !responded {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}

	return messages
}

// callIDs pairs id-less function calls with their responses by name.
type callIDs struct {
	next    int
	pending map[string][]string
}

func newCallIDs() *callIDs { return &callIDs{pending: map[string][]string{}} }

func (c *callIDs) assign(id, name string) string {
	if id == "" {
		c.next++
		id = fmt.Sprintf("call_%d", c.next)
	}
	c.pending[name] = append(c.pending[name], id)
	return id
}

func (c *callIDs) resolve(id, name string) string {
	queue := c.pending[name]
	if id != "" {
		for i, q := range queue {
			if q == id {
				c.pending[name] = append(queue[:i:i], queue[i+1:]...)
				break
			}
		}
		return id
	}
	if len(queue) == 0 {
		c.next++
		return fmt.Sprintf("call_%d", c.next)
	}
	c.pending[name] = queue[1:]
	return queue[0]
}

func encodeArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func decodeArgs(raw string) map[string]any {
	args := map[string]any{}
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{"input": raw}
	}
	return args
}
