package testutil

import (
	"context"

	"github.com/hupe1980/agentloom/core"
)

// StubAgent is a minimal core.Agent whose behavior is a closure. A nil
// RunFn returns an empty model prompt.
type StubAgent struct {
	AgentName   string
	Instruction string
	Tags        []string
	ToolSet     []core.Tool
	RunFn       func(rc *core.RunContext, inputs []core.Prompt) (core.Prompt, error)
}

// NewStubAgent returns a StubAgent with the given name and behavior.
func NewStubAgent(name string, fn func(rc *core.RunContext, inputs []core.Prompt) (core.Prompt, error)) *StubAgent {
	return &StubAgent{AgentName: name, RunFn: fn}
}

// Reply returns a StubAgent that always answers with text.
func Reply(name, text string) *StubAgent {
	return NewStubAgent(name, func(*core.RunContext, []core.Prompt) (core.Prompt, error) {
		return core.TextPrompt(core.RoleModel, text), nil
	})
}

func (a *StubAgent) Name() string                             { return a.AgentName }
func (a *StubAgent) Description() string                      { return a.AgentName + " agent" }
func (a *StubAgent) ShortDescription() string                 { return a.AgentName }
func (a *StubAgent) Tools() []core.Tool                       { return a.ToolSet }
func (a *StubAgent) SystemInstruction() string                { return a.Instruction }
func (a *StubAgent) OutputTags() []string                     { return a.Tags }
func (a *StubAgent) GenerationConfig() *core.GenerationConfig { return nil }

// Run implements core.Agent.
func (a *StubAgent) Run(rc *core.RunContext, inputs []core.Prompt) (core.Prompt, error) {
	if a.RunFn == nil {
		return core.EmptyPrompt(core.RoleModel), nil
	}
	return a.RunFn(rc, inputs)
}

// NewRunContext creates a fresh session on gw and a top-level run context
// for agent.
func NewRunContext(gw core.Gateway, agent core.Agent) (*core.Session, *core.RunContext) {
	sess := core.NewSession(gw)
	return sess, sess.NewRunContext(context.Background(), agent, nil)
}
