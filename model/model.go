package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentloom/core"
)

type mockStep struct {
	resp *core.GenerateResponse
	err  error
}

// Mock is a lightweight in-memory core.Gateway for tests and examples.
// Enqueued responses are replayed in order; once the queue is empty the
// mock answers from the canned prompt table or echoes the last input.
type Mock struct {
	mu        sync.Mutex
	info      core.GatewayInfo
	queue     []mockStep
	responses map[string]string
	requests  []core.GenerateRequest
}

// NewMock constructs a Mock reporting the given model name.
func NewMock(name string) *Mock {
	return &Mock{
		info:      core.GatewayInfo{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic completion for an input text. The
// text of the last prompt in a request is used as lookup key.
func (m *Mock) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends scripted responses.
func (m *Mock) Enqueue(resps ...*core.GenerateResponse) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range resps {
		m.queue = append(m.queue, mockStep{resp: r})
	}
	return m
}

// EnqueueText appends one model text response per argument.
func (m *Mock) EnqueueText(texts ...string) *Mock {
	for _, t := range texts {
		m.Enqueue(TextResponse(t))
	}
	return m
}

// EnqueueError makes the next call fail with err.
func (m *Mock) EnqueueError(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockStep{err: err})
	return m
}

// Generate implements core.Gateway.
func (m *Mock) Generate(ctx context.Context, req core.GenerateRequest) (*core.GenerateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if len(m.queue) > 0 {
		step := m.queue[0]
		m.queue = m.queue[1:]
		return step.resp, step.err
	}

	if len(req.Prompts) == 0 {
		return nil, fmt.Errorf("no prompts provided")
	}

	input := req.Prompts[len(req.Prompts)-1].Text()
	full, ok := m.responses[input]
	if !ok {
		full = fmt.Sprintf("Mock response to: %s", input)
	}

	return TextResponse(full), nil
}

// Info implements core.Gateway.
func (m *Mock) Info() core.GatewayInfo { return m.info }

// Requests returns a copy of every request received so far.
func (m *Mock) Requests() []core.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.GenerateRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of Generate invocations.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Pending returns the number of scripted responses not yet consumed.
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// TextResponse builds a model response with a single text part.
func TextResponse(text string) *core.GenerateResponse {
	return &core.GenerateResponse{Prompt: core.TextPrompt(core.RoleModel, text)}
}

// FunctionCallResponse builds a model response requesting one tool call.
func FunctionCallResponse(name string, args map[string]any) *core.GenerateResponse {
	return &core.GenerateResponse{Prompt: core.Prompt{
		Role:  core.RoleModel,
		Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{Name: name, Args: args}}},
	}}
}
