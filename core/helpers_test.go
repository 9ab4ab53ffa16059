package core

import (
	"context"
	"sync"
)

// scriptedGateway replays canned responses and captures every request.
type scriptedGateway struct {
	mu        sync.Mutex
	responses []*GenerateResponse
	err       error
	requests  []GenerateRequest
}

func (g *scriptedGateway) Generate(_ context.Context, req GenerateRequest) (*GenerateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	if len(g.responses) == 0 {
		return &GenerateResponse{Prompt: TextPrompt(RoleModel, "ok")}, nil
	}
	resp := g.responses[0]
	g.responses = g.responses[1:]
	return resp, nil
}

func (g *scriptedGateway) Info() GatewayInfo { return GatewayInfo{Name: "scripted", Provider: "test"} }

// funcAgent is a minimal Agent whose Run is a closure.
type funcAgent struct {
	name   string
	sys    string
	tags   []string
	tools  []Tool
	config *GenerationConfig
	run    func(rc *RunContext, inputs []Prompt) (Prompt, error)
}

func (a *funcAgent) Name() string                        { return a.name }
func (a *funcAgent) Description() string                 { return a.name + " description" }
func (a *funcAgent) ShortDescription() string            { return a.name }
func (a *funcAgent) Tools() []Tool                       { return a.tools }
func (a *funcAgent) SystemInstruction() string           { return a.sys }
func (a *funcAgent) OutputTags() []string                { return a.tags }
func (a *funcAgent) GenerationConfig() *GenerationConfig { return a.config }

func (a *funcAgent) Run(rc *RunContext, inputs []Prompt) (Prompt, error) {
	if a.run == nil {
		return EmptyPrompt(RoleModel), nil
	}
	return a.run(rc, inputs)
}

func usage(in, out int) *Usage {
	return &Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}
