package core

import "context"

// ToolDeclaration exposes a callable function to the model.
type ToolDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"` // JSON Schema
}

// SafetySetting is a provider specific content filter threshold.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GenerationConfig carries optional sampling parameters. Providers map the
// fields they support and ignore the rest.
type GenerationConfig struct {
	Temperature     *float64        `json:"temperature,omitempty"`
	TopK            *int            `json:"topK,omitempty"`
	TopP            *float64        `json:"topP,omitempty"`
	MaxOutputTokens *int            `json:"maxOutputTokens,omitempty"`
	StopSequences   []string        `json:"stopSequences,omitempty"`
	SafetySettings  []SafetySetting `json:"safetySettings,omitempty"`
}

// GenerateRequest is the normalized input of a single model call.
type GenerateRequest struct {
	Prompts           []Prompt
	SystemInstruction string
	Tools             []ToolDeclaration
	Config            *GenerationConfig
}

// GenerateResponse is the normalized output of a single model call. Usage
// may be nil when the provider does not report it.
type GenerateResponse struct {
	Prompt Prompt
	Usage  *Usage
}

// GatewayInfo describes the model behind a Gateway.
type GatewayInfo struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Gateway is the single entry point to a language model provider. Retry
// policy belongs to the calling agent.
type Gateway interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	Info() GatewayInfo
}
