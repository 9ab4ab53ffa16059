package core

// Part is one atomic content unit inside a Prompt. Concrete part types
// implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// BlobPart carries binary content, either inlined (Data) or referenced by a
// file URI.
type BlobPart struct {
	MimeType string
	Data     []byte // Inlined payload, empty when FileURI is set
	FileURI  string // External reference, empty when Data is inlined
}

// isPart implements the Part interface for BlobPart.
func (BlobPart) isPart() {}

// FunctionCall describes a tool invocation requested by the model.
type FunctionCall struct {
	ID   string         `json:"id,omitempty"` // Provider assigned call id (may be empty)
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
type FunctionResponse struct {
	ID       string `json:"id,omitempty"` // Matches originating FunctionCall ID
	Name     string `json:"name"`
	Response any    `json:"response,omitempty"` // Successful result (any shape)
	Error    string `json:"error,omitempty"`    // Populated on failure
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}

// ResponseMap returns the response payload as an object. Non-object results
// are wrapped under "result" and failures under "error".
func (fr FunctionResponse) ResponseMap() map[string]any {
	if fr.Error != "" {
		return map[string]any{"error": fr.Error}
	}
	if m, ok := fr.Response.(map[string]any); ok {
		return m
	}
	return map[string]any{"result": fr.Response}
}
