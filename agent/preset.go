package agent

import (
	"github.com/hupe1980/agentloom/core"
)

// PlanExecuteOptions configure the plan-and-execute preset.
type PlanExecuteOptions struct {
	ChainingOptions

	Planner         []func(o *SimpleOptions)
	Execution       []func(o *ExecutionOptions)
	NaturalResponse []func(o *SimpleOptions)
}

// NewPlanExecute composes Planner, Execution and NaturalResponse into a
// Chaining agent over tools. NaturalResponse doubles as the fallback.
func NewPlanExecute(name, description string, tools []core.Tool, optFns ...func(o *PlanExecuteOptions)) *Chaining {
	opts := PlanExecuteOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	answer := NewNaturalResponse(opts.NaturalResponse...)

	agents := []core.Agent{
		NewPlanner(tools, opts.Planner...),
		NewExecution(tools, opts.Execution...),
		answer,
	}

	return NewChaining(name, agents, answer, func(o *ChainingOptions) {
		*o = opts.ChainingOptions
		o.Name = name
		o.Description = description
		if o.ShortDescription == "" {
			o.ShortDescription = description
		}
	})
}
