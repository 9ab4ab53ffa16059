package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies the author of a prompt.
type Role string

const (
	// RoleUser marks content produced by the caller or an orchestrating agent.
	RoleUser Role = "user"
	// RoleModel marks content produced by the language model.
	RoleModel Role = "model"
	// RoleFunction marks tool results fed back to the model.
	RoleFunction Role = "function"
)

// Prompt is one canonical conversational turn: a role plus ordered parts.
type Prompt struct {
	Role  Role
	Parts []Part
}

// TextPrompt builds a prompt with one text part per argument.
func TextPrompt(role Role, texts ...string) Prompt {
	parts := make([]Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, TextPart{Text: t})
	}
	return Prompt{Role: role, Parts: parts}
}

// UserText is shorthand for a single text part prompt with role user.
func UserText(text string) Prompt { return TextPrompt(RoleUser, text) }

// EmptyPrompt returns a prompt without parts.
func EmptyPrompt(role Role) Prompt { return Prompt{Role: role, Parts: []Part{}} }

// MakePrompt normalizes a bare string, a single Part or a Prompt into a
// canonical Prompt. Bare content and prompts without a role default to
// RoleUser.
func MakePrompt(v any) (Prompt, error) {
	switch p := v.(type) {
	case string:
		return UserText(p), nil
	case Prompt:
		if p.Role == "" {
			p.Role = RoleUser
		}
		return p, nil
	case *Prompt:
		if p == nil {
			return Prompt{}, fmt.Errorf("%w: nil prompt", ErrInvalidPrompt)
		}
		return MakePrompt(*p)
	case Part:
		return Prompt{Role: RoleUser, Parts: []Part{p}}, nil
	default:
		return Prompt{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidPrompt, v)
	}
}

// MakePrompts normalizes every element with MakePrompt.
func MakePrompts(vs ...any) ([]Prompt, error) {
	out := make([]Prompt, 0, len(vs))
	for i, v := range vs {
		p, err := MakePrompt(v)
		if err != nil {
			return nil, fmt.Errorf("prompt %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Text joins all text parts with a newline.
func (p Prompt) Text() string {
	var texts []string
	for _, part := range p.Parts {
		if tp, ok := part.(TextPart); ok {
			texts = append(texts, tp.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// FirstText returns the first text part or an empty string.
func (p Prompt) FirstText() string {
	for _, part := range p.Parts {
		if tp, ok := part.(TextPart); ok {
			return tp.Text
		}
	}
	return ""
}

// FunctionCalls returns all function call parts in order.
func (p Prompt) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, part := range p.Parts {
		if fc, ok := part.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// IsEmpty reports whether the prompt has no parts.
func (p Prompt) IsEmpty() bool { return len(p.Parts) == 0 }

// Clone returns a copy whose parts slice can be mutated independently.
func (p Prompt) Clone() Prompt {
	parts := make([]Part, len(p.Parts))
	copy(parts, p.Parts)
	return Prompt{Role: p.Role, Parts: parts}
}

// wirePart is the flat JSON representation of a Part.
type wirePart struct {
	Kind             string            `json:"kind"`
	Text             string            `json:"text,omitempty"`
	MimeType         string            `json:"mimeType,omitempty"`
	Data             []byte            `json:"data,omitempty"`
	FileURI          string            `json:"fileUri,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

type wirePrompt struct {
	Role  Role       `json:"role"`
	Parts []wirePart `json:"parts"`
}

// MarshalJSON encodes the closed Part set with an explicit kind tag.
func (p Prompt) MarshalJSON() ([]byte, error) {
	w := wirePrompt{Role: p.Role, Parts: make([]wirePart, 0, len(p.Parts))}
	for _, part := range p.Parts {
		switch v := part.(type) {
		case TextPart:
			w.Parts = append(w.Parts, wirePart{Kind: "text", Text: v.Text})
		case BlobPart:
			w.Parts = append(w.Parts, wirePart{Kind: "blob", MimeType: v.MimeType, Data: v.Data, FileURI: v.FileURI})
		case FunctionCallPart:
			fc := v.FunctionCall
			w.Parts = append(w.Parts, wirePart{Kind: "functionCall", FunctionCall: &fc})
		case FunctionResponsePart:
			fr := v.FunctionResponse
			w.Parts = append(w.Parts, wirePart{Kind: "functionResponse", FunctionResponse: &fr})
		default:
			return nil, fmt.Errorf("%w: unknown part %T", ErrInvalidPrompt, part)
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the representation produced by MarshalJSON.
func (p *Prompt) UnmarshalJSON(data []byte) error {
	var w wirePrompt
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	p.Role = w.Role
	p.Parts = make([]Part, 0, len(w.Parts))

	for _, wp := range w.Parts {
		switch wp.Kind {
		case "text":
			p.Parts = append(p.Parts, TextPart{Text: wp.Text})
		case "blob":
			p.Parts = append(p.Parts, BlobPart{MimeType: wp.MimeType, Data: wp.Data, FileURI: wp.FileURI})
		case "functionCall":
			if wp.FunctionCall == nil {
				return fmt.Errorf("%w: functionCall part without payload", ErrInvalidPrompt)
			}
			p.Parts = append(p.Parts, FunctionCallPart{FunctionCall: *wp.FunctionCall})
		case "functionResponse":
			if wp.FunctionResponse == nil {
				return fmt.Errorf("%w: functionResponse part without payload", ErrInvalidPrompt)
			}
			p.Parts = append(p.Parts, FunctionResponsePart{FunctionResponse: *wp.FunctionResponse})
		default:
			return fmt.Errorf("%w: unknown part kind %q", ErrInvalidPrompt, wp.Kind)
		}
	}

	return nil
}
