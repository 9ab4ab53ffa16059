package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
	got  *ToolContext
}

func (s *stubTool) Name() string               { return s.name }
func (s *stubTool) Description() string        { return "echoes" }
func (s *stubTool) Parameters() map[string]any { return map[string]any{"type": "object"} }

func (s *stubTool) Call(tc *ToolContext, args map[string]any) (any, error) {
	s.got = tc
	return args, nil
}

func TestFindTool(t *testing.T) {
	tools := []Tool{&stubTool{name: "Echo"}, &stubTool{name: "GetTicketContent"}}

	got, err := FindTool(tools, "GetTicketContent")
	require.NoError(t, err)
	assert.Equal(t, "GetTicketContent", got.Name())

	_, err = FindTool(tools, "echo")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestToolContext_ExposesCaller(t *testing.T) {
	s := NewSession(&scriptedGateway{}, func(o *SessionOptions) { o.ID = "s1" })
	tool := &stubTool{name: "Echo"}

	agent := &funcAgent{name: "exec", run: func(rc *RunContext, _ []Prompt) (Prompt, error) {
		_, err := tool.Call(NewToolContext(rc, "call-1"), map[string]any{"x": 1})
		assert.Equal(t, rc.Path(), tool.got.Path())
		return Prompt{}, err
	}}

	_, err := s.RunAgent(context.Background(), agent, nil)
	require.NoError(t, err)

	assert.Equal(t, "s1", tool.got.SessionID())
	assert.Equal(t, "exec", tool.got.AgentName())
	assert.Equal(t, "call-1", tool.got.FunctionCallID())
	assert.NotNil(t, tool.got.Logger())
	assert.NotNil(t, tool.got.Context())
}

func TestToolDeclarations(t *testing.T) {
	assert.Nil(t, ToolDeclarations(nil))

	decls := ToolDeclarations([]Tool{&stubTool{name: "Echo"}})
	assert.Equal(t, []ToolDeclaration{{Name: "Echo", Description: "echoes", Parameters: map[string]any{"type": "object"}}}, decls)
}
