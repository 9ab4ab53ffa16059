package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentloom/logging"
)

// Tool is an invocable capability with a declared name and JSON schema.
// Resolution against an agent's tool set is by exact name.
type Tool interface {
	// Name returns the identifier the model uses in function calls.
	Name() string

	// Description tells the model when and how to use the tool.
	Description() string

	// Parameters returns the JSON schema of the accepted arguments.
	Parameters() map[string]any

	// Call executes the tool. Calls block until complete.
	Call(toolCtx *ToolContext, args map[string]any) (any, error)
}

// ToolContext is the scope handed to a tool invocation. It exposes the
// owning run context's identity and logger without the ability to mutate
// the session.
type ToolContext struct {
	runCtx         *RunContext
	functionCallID string

	*loggerAdapter
}

// NewToolContext binds a tool invocation to its calling run context.
func NewToolContext(runCtx *RunContext, functionCallID string) *ToolContext {
	return &ToolContext{
		runCtx:         runCtx,
		functionCallID: functionCallID,
		loggerAdapter:  runCtx.loggerAdapter,
	}
}

// Context returns the ambient context of the calling agent.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// SessionID returns the id of the owning session.
func (tc *ToolContext) SessionID() string { return tc.runCtx.Session().ID() }

// Path returns the tree path of the calling context.
func (tc *ToolContext) Path() TreePath { return tc.runCtx.Path() }

// AgentName returns the name of the calling agent.
func (tc *ToolContext) AgentName() string { return tc.runCtx.Agent().Name() }

// FunctionCallID returns the provider assigned id of the originating call.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// ToolDeclarations converts tools into model facing declarations.
func ToolDeclarations(tools []Tool) []ToolDeclaration {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]ToolDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, ToolDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return decls
}

// FindTool resolves name against tools by exact match.
func FindTool(tools []Tool, name string) (Tool, error) {
	for _, t := range tools {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
}
