package tool

import "github.com/hupe1980/agentloom/core"

// EchoArgs are the arguments of the Echo tool.
type EchoArgs struct {
	Text string `json:"text" description:"Text to return unchanged"`
}

// NewEcho returns a tool that answers with its text argument. It is handy
// for wiring checks and examples.
func NewEcho() *FunctionTool {
	return NewFunctionToolFromStruct("Echo", "Returns the given text unchanged", EchoArgs{},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return map[string]any{"text": args["text"]}, nil
		})
}
