// Package gemini provides a core.Gateway backed by the Google Gemini API via
// google.golang.org/genai.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hupe1980/agentloom/core"
)

// DefaultModel is the Gemini model used when Options.Model is empty.
const DefaultModel = "gemini-2.0-flash"

// Options configures the Gemini gateway.
type Options struct {
	Model       string
	APIKey      string
	Temperature *float32
}

// Gateway wraps genai Models.GenerateContent behind core.Gateway.
type Gateway struct {
	client *genai.Client
	opts   Options
}

// New creates a Gemini API gateway.
func New(ctx context.Context, optFns ...func(o *Options)) (*Gateway, error) {
	opts := Options{Model: DefaultModel}
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gateway{client: client, opts: opts}, nil
}

// NewFromClient creates a Gemini gateway from an existing client.
func NewFromClient(client *genai.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{Model: DefaultModel}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

// Generate implements core.Gateway.
func (g *Gateway) Generate(ctx context.Context, req core.GenerateRequest) (*core.GenerateResponse, error) {
	contents, err := buildContents(req.Prompts)
	if err != nil {
		return nil, err
	}

	cfg, err := g.buildConfig(req)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.opts.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates returned")
	}

	out := &core.GenerateResponse{Prompt: fromContent(resp.Candidates[0].Content)}
	out.Prompt.Role = core.RoleModel

	if um := resp.UsageMetadata; um != nil {
		out.Usage = &core.Usage{
			InputTokens:  int(um.PromptTokenCount),
			OutputTokens: int(um.CandidatesTokenCount),
			TotalTokens:  int(um.TotalTokenCount),
		}
	}

	return out, nil
}

// Info implements core.Gateway.
func (g *Gateway) Info() core.GatewayInfo {
	return core.GatewayInfo{Name: g.opts.Model, Provider: "gemini"}
}

func (g *Gateway) buildConfig(req core.GenerateRequest) (*genai.GenerateContentConfig, error) {
	cfg := &genai.GenerateContentConfig{Temperature: g.opts.Temperature}

	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	if c := req.Config; c != nil {
		if c.Temperature != nil {
			cfg.Temperature = genai.Ptr(float32(*c.Temperature))
		}
		if c.TopP != nil {
			cfg.TopP = genai.Ptr(float32(*c.TopP))
		}
		if c.TopK != nil {
			cfg.TopK = genai.Ptr(float32(*c.TopK))
		}
		if c.MaxOutputTokens != nil {
			cfg.MaxOutputTokens = int32(*c.MaxOutputTokens)
		}
		cfg.StopSequences = c.StopSequences
		for _, s := range c.SafetySettings {
			cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{
				Category:  genai.HarmCategory(s.Category),
				Threshold: genai.HarmBlockThreshold(s.Threshold),
			})
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			schema, err := toSchema(t.Parameters)
			if err != nil {
				return nil, fmt.Errorf("tool %s: %w", t.Name, err)
			}
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schema,
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	return cfg, nil
}

// buildContents maps canonical prompts to genai contents. Gemini knows only
// user and model roles, so function responses travel with role user.
func buildContents(prompts []core.Prompt) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(prompts))

	for _, p := range prompts {
		c := &genai.Content{Role: genai.RoleUser}
		if p.Role == core.RoleModel {
			c.Role = genai.RoleModel
		}

		for _, part := range p.Parts {
			switch v := part.(type) {
			case core.TextPart:
				c.Parts = append(c.Parts, &genai.Part{Text: v.Text})
			case core.BlobPart:
				if v.FileURI != "" {
					c.Parts = append(c.Parts, &genai.Part{FileData: &genai.FileData{MIMEType: v.MimeType, FileURI: v.FileURI}})
				} else {
					c.Parts = append(c.Parts, &genai.Part{InlineData: &genai.Blob{MIMEType: v.MimeType, Data: v.Data}})
				}
			case core.FunctionCallPart:
				c.Parts = append(c.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   v.FunctionCall.ID,
					Name: v.FunctionCall.Name,
					Args: v.FunctionCall.Args,
				}})
			case core.FunctionResponsePart:
				c.Parts = append(c.Parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       v.FunctionResponse.ID,
					Name:     v.FunctionResponse.Name,
					Response: v.FunctionResponse.ResponseMap(),
				}})
			default:
				return nil, fmt.Errorf("%w: unsupported part %T", core.ErrInvalidPrompt, part)
			}
		}

		if len(c.Parts) > 0 {
			contents = append(contents, c)
		}
	}

	return contents, nil
}

func fromContent(c *genai.Content) core.Prompt {
	p := core.Prompt{Role: core.Role(c.Role), Parts: make([]core.Part, 0, len(c.Parts))}

	for _, part := range c.Parts {
		switch {
		case part.FunctionCall != nil:
			p.Parts = append(p.Parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			}})
		case part.InlineData != nil:
			p.Parts = append(p.Parts, core.BlobPart{MimeType: part.InlineData.MIMEType, Data: part.InlineData.Data})
		case part.FileData != nil:
			p.Parts = append(p.Parts, core.BlobPart{MimeType: part.FileData.MIMEType, FileURI: part.FileData.FileURI})
		case part.Text != "" && !part.Thought:
			p.Parts = append(p.Parts, core.TextPart{Text: part.Text})
		}
	}

	return p
}

// toSchema converts a JSON Schema map into a genai.Schema. Gemini expects
// upper-case type names.
func toSchema(params map[string]any) (*genai.Schema, error) {
	if len(params) == 0 {
		return nil, nil
	}

	b, err := json.Marshal(upperTypes(params))
	if err != nil {
		return nil, err
	}

	var schema genai.Schema
	if err := json.Unmarshal(b, &schema); err != nil {
		return nil, fmt.Errorf("convert schema: %w", err)
	}

	return &schema, nil
}

func upperTypes(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if s, ok := val.(string); ok && k == "type" {
				out[k] = strings.ToUpper(s)
				continue
			}
			out[k] = upperTypes(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = upperTypes(val)
		}
		return out
	default:
		return v
	}
}
