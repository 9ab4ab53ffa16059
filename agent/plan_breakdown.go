package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hupe1980/agentloom/core"
)

const planBreakdownInstruction = `You are a Plan Breakdown Agent, specialized in analyzing and optimizing plans created by other agents. Your tasks are:

1. Carefully analyze the given plan.
2. Break down the plan into detailed, actionable steps.
3. Identify dependencies between steps.
4. Apply topological sorting to order steps for potential parallel execution.
5. You MUST output the steps in this format (keep the brackets strictly, it's important for parsing): [STEP_IDX][DEPENDENCIES]: <step description in ONE LINE ONLY>

Guidelines:
- Ensure each step is clear, concise, and actionable.
- List dependencies for each step. Use [] if there are no dependencies.
- Maintain the logical flow of the original plan while optimizing for parallel execution.
- If a step depends on multiple previous steps, list all dependencies separated by commas.
- Ensure that the step index starts at 1 and increments for each step.

Your output should be a well-structured, optimized version of the original plan that an Execution Agent can follow efficiently.`

const stepFormat = "[STEP_INDEX][DEPENDENCIES]: <step description>"

var stepPattern = regexp.MustCompile(`^\[(\d+)\]\[([^\]]*)\]:\s*(.*)$`)

// Step is one validated line of a plan breakdown.
type Step struct {
	Index        int
	Dependencies []int
	Description  string
}

// String renders the step in breakdown format.
func (s Step) String() string {
	deps := make([]string, len(s.Dependencies))
	for i, d := range s.Dependencies {
		deps[i] = strconv.Itoa(d)
	}
	return fmt.Sprintf("[%d][%s]: %s", s.Index, strings.Join(deps, ","), s.Description)
}

// PlanBreakdown decomposes the most recent "plan" record into indexed steps
// with dependency lists. Output lines not matching the step format are
// dropped; zero valid lines is a format error.
type PlanBreakdown struct {
	BaseAgent
}

// NewPlanBreakdown creates a PlanBreakdown agent.
func NewPlanBreakdown(optFns ...func(o *Options)) *PlanBreakdown {
	opts := Options{
		Name:              PlanBreakdownAgentName,
		Description:       "An AI agent that analyzes plans from other agents, breaks them down into detailed steps, and applies topological sorting for optimal execution order",
		ShortDescription:  "Optimizes plans for parallel execution",
		SystemInstruction: planBreakdownInstruction,
		OutputTags:        []string{core.TagPlan},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &PlanBreakdown{BaseAgent: NewBaseAgent(opts)}
}

// Run implements core.Agent.
func (p *PlanBreakdown) Run(rc *core.RunContext, _ []core.Prompt) (core.Prompt, error) {
	planRecord := rc.LastTagged(core.TagPlan)
	if planRecord == nil {
		return core.Prompt{}, core.ErrNoPlan
	}

	rec, err := rc.Query([]core.Prompt{core.TextPrompt(core.RoleUser,
		"Here's the plan to break down and optimize:\n\n"+planRecord.Prompt.Text(),
		"Please analyze this plan, break it down into detailed steps, identify dependencies, and apply topological sorting. Output the result in the required format: "+stepFormat,
	)})
	if err != nil {
		return core.Prompt{}, err
	}

	steps, err := ParseSteps(rec.Output.Text())
	if err != nil {
		return core.Prompt{}, err
	}

	lines := make([]string, len(steps))
	for i, s := range steps {
		lines[i] = s.String()
	}

	out := core.TextPrompt(core.RoleModel, strings.Join(lines, "\n"))

	if _, err := rc.RecordOperation(out, fmt.Sprintf("plan breakdown (%d steps)", len(steps)), core.WithQueryIDs(rec.ID)); err != nil {
		return core.Prompt{}, err
	}

	return out, nil
}

// ParseSteps validates every line of text against the step format and
// returns the matching ones in order.
func ParseSteps(text string) ([]Step, error) {
	var steps []Step

	for _, line := range strings.Split(text, "\n") {
		m := stepPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		var deps []int
		for _, d := range strings.Split(m[2], ",") {
			if n, err := strconv.Atoi(strings.TrimSpace(d)); err == nil {
				deps = append(deps, n)
			}
		}

		steps = append(steps, Step{Index: index, Dependencies: deps, Description: strings.TrimSpace(m[3])})
	}

	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: The output format is incorrect. Please ensure each step follows the format: %s", core.ErrInvalidFormat, stepFormat)
	}

	return steps, nil
}
