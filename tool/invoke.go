package tool

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentloom/core"
)

// Invoke runs t with args inside toolCtx. Panics inside the tool are
// recovered and reported as a *ToolError with code PANIC.
func Invoke(toolCtx *core.ToolContext, t Tool, args map[string]any) (result any, err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ToolError{Tool: t.Name(), Message: fmt.Sprint(r), Code: CodePanic}
		}

		toolCtx.LogToolCall(t.Name(), time.Since(start), err)
	}()

	if args == nil {
		args = map[string]any{}
	}

	return t.Call(toolCtx, args)
}
