package testutil

import "github.com/hupe1980/agentloom/core"

// PromptBuilder provides a fluent helper for constructing prompts in tests.
//
//	p := NewPromptBuilder().Model().Text("hello").FunctionCall("Echo", map[string]any{"text": "x"}).Build()
type PromptBuilder struct {
	role  core.Role
	parts []core.Part
}

// NewPromptBuilder creates a builder with role user.
func NewPromptBuilder() *PromptBuilder { return &PromptBuilder{role: core.RoleUser} }

// User sets the role to user (chainable).
func (b *PromptBuilder) User() *PromptBuilder { b.role = core.RoleUser; return b }

// Model sets the role to model (chainable).
func (b *PromptBuilder) Model() *PromptBuilder { b.role = core.RoleModel; return b }

// Function sets the role to function (chainable).
func (b *PromptBuilder) Function() *PromptBuilder { b.role = core.RoleFunction; return b }

// Text appends a text part (chainable).
func (b *PromptBuilder) Text(t string) *PromptBuilder {
	b.parts = append(b.parts, core.TextPart{Text: t})
	return b
}

// Blob appends an inline binary part (chainable).
func (b *PromptBuilder) Blob(mimeType string, data []byte) *PromptBuilder {
	b.parts = append(b.parts, core.BlobPart{MimeType: mimeType, Data: data})
	return b
}

// FunctionCall appends a function call part (chainable).
func (b *PromptBuilder) FunctionCall(name string, args map[string]any) *PromptBuilder {
	b.parts = append(b.parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{Name: name, Args: args}})
	return b
}

// FunctionResponse appends a function response part (chainable).
func (b *PromptBuilder) FunctionResponse(name string, result any, err error) *PromptBuilder {
	fr := core.FunctionResponse{Name: name, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	b.parts = append(b.parts, core.FunctionResponsePart{FunctionResponse: fr})
	return b
}

// Build constructs the core.Prompt value.
func (b *PromptBuilder) Build() core.Prompt {
	parts := make([]core.Part, len(b.parts))
	copy(parts, b.parts)
	return core.Prompt{Role: b.role, Parts: parts}
}
