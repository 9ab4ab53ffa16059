package agent

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/tool"
)

// CompletedSentinel marks the final output of an Execution run.
const CompletedSentinel = "_COMPLETED_"

const executionInstruction = `You are an Execution AI Agent responsible for executing plans created by a Planner Agent. Your role is to:
1. Analyze the given plan and execution history.
2. Determine the steps that already accomplished and what you should do next to complete the plan.
3. Use function / tool calls when necessary to complete steps.
4. If there's any confusion or missing information, stop and provide feedback instead of continuing.
5. Try to make use of the information retrieved in the history, DO NOT trigger the same functions / tools that have been done.
6. The final output MUST start with the "` + CompletedSentinel + `" indicator so we can stop the execution`

const (
	executeDirective  = "Please execute the plan"
	continueDirective = "Please continue to execute the plan"
)

// ExecutionOptions configure an Execution agent.
type ExecutionOptions struct {
	Options

	// MaxIterations bounds the model/tool loop. Defaults to 10.
	MaxIterations int
	// Timeout is checked before every iteration. Defaults to 300s.
	Timeout time.Duration
}

// Execution drives a bounded loop of model calls and tool invocations until
// the model emits CompletedSentinel. Running out of iterations or time is
// an error.
type Execution struct {
	BaseAgent

	maxIterations int
	timeout       time.Duration
}

// NewExecution creates an Execution agent that may call tools.
func NewExecution(tools []core.Tool, optFns ...func(o *ExecutionOptions)) *Execution {
	maxTokens := 1000

	opts := ExecutionOptions{
		Options: Options{
			Name:              ExecutionAgentName,
			Description:       "An AI agent that executes plans created by the Planner Agent, optimizing for parallel execution when possible",
			ShortDescription:  "Executes optimized plans in parallel and provides feedback on execution progress and issues",
			SystemInstruction: executionInstruction,
			Tools:             tools,
			OutputTags:        []string{TagExecution},
			GenerationConfig:  &core.GenerationConfig{MaxOutputTokens: &maxTokens},
		},
		MaxIterations: 10,
		Timeout:       300 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Execution{
		BaseAgent:     NewBaseAgent(opts.Options),
		maxIterations: opts.MaxIterations,
		timeout:       opts.Timeout,
	}
}

// Run implements core.Agent.
func (e *Execution) Run(rc *core.RunContext, inputs []core.Prompt) (core.Prompt, error) {
	start := time.Now()
	prompts := append([]core.Prompt(nil), inputs...)
	succeeded := ""

	for iteration := 1; iteration <= e.maxIterations; iteration++ {
		if elapsed := time.Since(start); e.timeout > 0 && elapsed > e.timeout {
			return core.Prompt{}, fmt.Errorf("%w: timed out after %d iterations (%s)", core.ErrExhausted, iteration-1, elapsed.Round(time.Millisecond))
		}

		if err := rc.Context.Err(); err != nil {
			return core.Prompt{}, err
		}

		prompts = append(prompts, core.UserText(directive(iteration, succeeded)))

		rec, err := rc.Query(prompts)
		if err != nil {
			return core.Prompt{}, err
		}

		out := rec.Output

		if _, err := rc.RecordOperation(out, fmt.Sprintf("Model response - Iteration %d", iteration), core.WithQueryIDs(rec.ID)); err != nil {
			return core.Prompt{}, err
		}

		responses, err := e.callTools(rc, out.FunctionCalls(), iteration)
		if err != nil {
			return core.Prompt{}, err
		}

		if strings.Contains(out.Text(), CompletedSentinel) {
			if _, err := rc.RecordOperation(out, "Execution complete", core.WithExtraTags(TagExecutionComplete)); err != nil {
				return core.Prompt{}, err
			}
			return out, nil
		}

		prompts = append(prompts, out)

		succeeded = ""
		if len(responses) > 0 {
			parts := make([]core.Part, 0, len(responses))
			for _, r := range responses {
				parts = append(parts, core.FunctionResponsePart{FunctionResponse: r})
				if succeeded == "" && r.Error == "" {
					succeeded = r.Name
				}
			}
			prompts = append(prompts, core.Prompt{Role: core.RoleFunction, Parts: parts})
		}
	}

	return core.Prompt{}, fmt.Errorf("%w: no completion after %d iterations", core.ErrExhausted, e.maxIterations)
}

// callTools resolves and invokes every function call of one model turn.
// An unknown tool name aborts the run; runtime tool failures are returned
// as error responses for the model to see.
func (e *Execution) callTools(rc *core.RunContext, calls []core.FunctionCall, iteration int) ([]core.FunctionResponse, error) {
	responses := make([]core.FunctionResponse, 0, len(calls))

	for _, fc := range calls {
		t, err := core.FindTool(e.Tools(), fc.Name)
		if err != nil {
			return nil, err
		}

		rc.LogDebug("agent.execution.tool_call", "agent", e.Name(), "tool", fc.Name, "iteration", iteration)

		result, err := tool.Invoke(core.NewToolContext(rc, fc.ID), t, fc.Args)

		resp := core.FunctionResponse{ID: fc.ID, Name: fc.Name, Response: result}

		var report any = result
		if err != nil {
			var te *tool.ToolError
			if !errors.As(err, &te) {
				te = tool.NewToolError(fc.Name, err.Error(), tool.CodeExecution)
			}

			rc.LogWarn("agent.execution.tool_error", "agent", e.Name(), "tool", fc.Name, "code", te.Code, "error", te.Message)

			resp.Response = nil
			resp.Error = te.Error()
			report = te
		}

		if _, err := rc.RecordOperation(core.UserText(toYAML(report)), fmt.Sprintf("Function call: %s - Iteration %d", fc.Name, iteration)); err != nil {
			return nil, err
		}

		responses = append(responses, resp)
	}

	return responses, nil
}

func directive(iteration int, succeeded string) string {
	switch {
	case iteration == 1:
		return executeDirective
	case succeeded != "":
		return fmt.Sprintf("Function %s has run successfully. %s", succeeded, continueDirective)
	default:
		return continueDirective
	}
}
