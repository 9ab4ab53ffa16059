package tool

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/internal/testutil"
	"github.com/hupe1980/agentloom/logging"
	"github.com/hupe1980/agentloom/model"
)

func newToolContext(t *testing.T) *core.ToolContext {
	t.Helper()
	_, rc := testutil.NewRunContext(model.NewMock("test"), testutil.Reply("Agent", "ok"))
	return core.NewToolContext(rc, "fc1")
}

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ *core.ToolContext, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	result, err := sumTool.Call(newToolContext(t), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []any{"a"},
	}
	called := false
	tTool := NewFunctionTool("test", "Test", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		called = true
		return 0, nil
	})

	_, err := tTool.Call(newToolContext(t), map[string]any{})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.False(t, called)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	execTool := NewFunctionTool("fail", "Fails", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := execTool.Call(newToolContext(t), map[string]any{})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestFunctionTool_ForwardsToolError(t *testing.T) {
	custom := NewToolError("custom", "not allowed", "FORBIDDEN")
	ft := NewFunctionTool("custom", "Custom", nil, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, custom
	})

	_, err := ft.Call(newToolContext(t), nil)
	assert.Same(t, custom, err)
}

func TestInvokeRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Output: &buf})

	sess := core.NewSession(model.NewMock("test"), func(o *core.SessionOptions) { o.Logger = logger })
	rc := sess.NewRunContext(t.Context(), testutil.Reply("Agent", "ok"), nil)

	boom := NewFunctionTool("boom", "Panics", nil, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		panic("kaboom")
	})

	_, err := Invoke(core.NewToolContext(rc, "fc"), boom, nil)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodePanic, toolErr.Code)
	assert.Contains(t, buf.String(), "Tool execution failed")
}

func TestEcho(t *testing.T) {
	echo := NewEcho()
	assert.Equal(t, "Echo", echo.Name())
	assert.Equal(t, []string{"text"}, echo.Parameters()["required"])

	out, err := Invoke(newToolContext(t), echo, map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "hi"}, out)

	_, err = Invoke(newToolContext(t), echo, map[string]any{"text": 1})
	assert.Error(t, err)
}

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")
	assert.Equal(t, "tool error in demo: x", (&ToolError{Tool: "demo", Message: "x"}).Error())
}
