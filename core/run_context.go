package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RunContext is the scope of exactly one agent invocation. Contexts form a
// tree mirroring call nesting: each path extends its parent's path by one
// fresh id. A RunContext is discarded when its agent returns.
type RunContext struct {
	Context context.Context

	id      string
	path    TreePath
	session *Session
	agent   Agent
	parent  *RunContext

	*loggerAdapter
}

// ID returns the context's own path segment.
func (rc *RunContext) ID() string { return rc.id }

// Path returns a copy of the context's tree path.
func (rc *RunContext) Path() TreePath { return slices.Clone(rc.path) }

// Session returns the owning session.
func (rc *RunContext) Session() *Session { return rc.session }

// Agent returns the agent owning this context.
func (rc *RunContext) Agent() Agent { return rc.agent }

// Parent returns the enclosing context or nil for a top-level run.
func (rc *RunContext) Parent() *RunContext { return rc.parent }

// Query issues a model call on behalf of the owning agent, injecting its
// system instruction, tool declarations and generation config.
func (rc *RunContext) Query(prompts []Prompt) (*QueryRecord, error) {
	return rc.session.Generate(rc.Context, QueryRequest{
		AgentName:         rc.agent.Name(),
		Path:              rc.path,
		Prompts:           prompts,
		SystemInstruction: rc.agent.SystemInstruction(),
		Tools:             ToolDeclarations(rc.agent.Tools()),
		Config:            rc.agent.GenerationConfig(),
	})
}

// RecordOperation appends an operation record at this context's path. The
// owning agent's output tags apply unless overridden with WithTags.
func (rc *RunContext) RecordOperation(p Prompt, description string, optFns ...func(o *RecordOptions)) (*OperationRecord, error) {
	opts := append([]func(o *RecordOptions){WithTags(rc.agent.OutputTags()...)}, optFns...)
	return rc.session.RecordOperation(rc.path, rc.agent.Name(), p, description, opts...)
}

// RunAgent hands off to sub: it records the handoff, registers sub as an
// active agent and runs it in a fresh child context.
func (rc *RunContext) RunAgent(sub Agent, inputs []Prompt, description string) (Prompt, error) {
	handoff := fmt.Sprintf("request to %s: %s", sub.Name(), description)
	if _, err := rc.session.RecordOperation(rc.path, rc.agent.Name(), TextPrompt(RoleModel, handoff), handoff, WithTags(TagHandoff)); err != nil {
		return Prompt{}, NewAgentError(rc.agent.Name(), "handoff", err)
	}

	if err := rc.session.RegisterActiveAgent(sub); err != nil {
		return Prompt{}, NewAgentError(sub.Name(), "register", err)
	}

	child := rc.session.NewRunContext(rc.Context, sub, rc)

	return child.run(sub, inputs)
}

func (rc *RunContext) run(agent Agent, inputs []Prompt) (Prompt, error) {
	ctx, span := rc.session.tracer.Start(rc.Context, "agent.run "+agent.Name(), trace.WithAttributes(
		attribute.String("agentloom.agent", agent.Name()),
		attribute.String("agentloom.tree_path", rc.path.String()),
	))
	defer span.End()

	rc.Context = ctx
	start := time.Now()

	rc.LogDebug("agent.run.start", "agent", agent.Name(), "inputs", len(inputs))

	out, err := agent.Run(rc, inputs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		rc.LogError("agent.run.error", "agent", agent.Name(),
			"duration_ms", time.Since(start).Milliseconds(), "error", err.Error())

		var ae *AgentError
		if errors.As(err, &ae) {
			return Prompt{}, err
		}

		return Prompt{}, NewAgentError(agent.Name(), "run", err)
	}

	rc.LogDebug("agent.run.done", "agent", agent.Name(),
		"duration_ms", time.Since(start).Milliseconds())

	return out, nil
}

// Records returns the session's operation log.
func (rc *RunContext) Records() []*OperationRecord { return rc.session.Operations() }

// ConversationPrompts returns the session's conversation so far.
func (rc *RunContext) ConversationPrompts() []Prompt { return rc.session.ConversationPrompts() }

// LastTagged returns the newest session record carrying tag, or nil.
func (rc *RunContext) LastTagged(tag string) *OperationRecord {
	return LastTagged(rc.session.Operations(), tag)
}
