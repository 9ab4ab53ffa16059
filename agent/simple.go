package agent

import (
	"github.com/hupe1980/agentloom/core"
)

// SimpleOptions configure a Simple agent.
type SimpleOptions struct {
	Options

	// TriggerPrompt is appended after the built inputs when set.
	TriggerPrompt *core.Prompt
	// InputBuilder derives the model input from the run inputs. Defaults to
	// the inputs unchanged.
	InputBuilder func(rc *core.RunContext, inputs []core.Prompt) ([]core.Prompt, error)
	// RecordDescription describes the operation record of the response.
	RecordDescription string
}

// Simple issues exactly one model query per run: built inputs plus the
// optional trigger prompt. The response is recorded and returned.
type Simple struct {
	BaseAgent

	trigger           *core.Prompt
	inputBuilder      func(rc *core.RunContext, inputs []core.Prompt) ([]core.Prompt, error)
	recordDescription string
}

// NewSimple creates a Simple agent.
func NewSimple(name string, optFns ...func(o *SimpleOptions)) *Simple {
	opts := SimpleOptions{
		Options:           Options{Name: name},
		RecordDescription: "model response",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Simple{
		BaseAgent:         NewBaseAgent(opts.Options),
		inputBuilder:      opts.InputBuilder,
		recordDescription: opts.RecordDescription,
	}

	if opts.TriggerPrompt != nil {
		trigger := opts.TriggerPrompt.Clone()
		s.trigger = &trigger
	}

	return s
}

// TriggerPrompt returns the fixed prompt appended to every query, or nil.
func (s *Simple) TriggerPrompt() *core.Prompt { return s.trigger }

// Run implements core.Agent. Without any input the agent answers with an
// empty model prompt and issues no query.
func (s *Simple) Run(rc *core.RunContext, inputs []core.Prompt) (core.Prompt, error) {
	prompts := inputs
	if s.inputBuilder != nil {
		built, err := s.inputBuilder(rc, inputs)
		if err != nil {
			return core.Prompt{}, err
		}
		prompts = built
	}

	prompts = append([]core.Prompt(nil), prompts...)
	if s.trigger != nil {
		prompts = append(prompts, s.trigger.Clone())
	}

	if len(prompts) == 0 {
		rc.LogDebug("agent.simple.skip", "agent", s.Name(), "reason", "no input")
		return core.EmptyPrompt(core.RoleModel), nil
	}

	rec, err := rc.Query(prompts)
	if err != nil {
		return core.Prompt{}, err
	}

	if _, err := rc.RecordOperation(rec.Output, s.recordDescription, core.WithQueryIDs(rec.ID)); err != nil {
		return core.Prompt{}, err
	}

	return rec.Output, nil
}

// withConversation prepends the session conversation to the inputs,
// dropping duplicates.
func withConversation(rc *core.RunContext, inputs []core.Prompt) []core.Prompt {
	prompts := append(rc.ConversationPrompts(), inputs...)
	return core.DedupPrompts(prompts)
}
