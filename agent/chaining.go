package agent

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/internal/util"
)

// ChainingOptions configure a Chaining agent.
type ChainingOptions struct {
	Options

	// Retained is how many of the most recent outputs feed the next agent.
	// Defaults to 1.
	Retained int
}

// Chaining runs a fixed list of agents in order, feeding each one the last
// Retained outputs. A failing agent diverts the run to the fallback agent.
type Chaining struct {
	BaseAgent

	agents   []core.Agent
	fallback core.Agent
	retained int
}

// NewChaining creates a Chaining agent named name.
func NewChaining(name string, agents []core.Agent, fallback core.Agent, optFns ...func(o *ChainingOptions)) *Chaining {
	opts := ChainingOptions{
		Options: Options{
			Name:             name,
			Description:      "An AI agent that chains multiple agents together, passing the output of one agent as input to the next, with a fallback mechanism for error handling",
			ShortDescription: "Chains multiple AI agents for complex task processing",
		},
		Retained: 1,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Name == "" {
		opts.Name = ChainingAgentName
	}

	if opts.Retained < 1 {
		opts.Retained = 1
	}

	return &Chaining{
		BaseAgent: NewBaseAgent(opts.Options),
		agents:    append([]core.Agent(nil), agents...),
		fallback:  fallback,
		retained:  opts.Retained,
	}
}

// Agents returns the chained agents in run order.
func (c *Chaining) Agents() []core.Agent { return append([]core.Agent(nil), c.agents...) }

// Fallback returns the agent handling failures.
func (c *Chaining) Fallback() core.Agent { return c.fallback }

// Run implements core.Agent.
func (c *Chaining) Run(rc *core.RunContext, inputs []core.Prompt) (core.Prompt, error) {
	outputs := append([]core.Prompt(nil), inputs...)

	for _, a := range c.agents {
		out, err := rc.RunAgent(a, util.TakeRight(outputs, c.retained), "chained by "+c.Name())
		if err != nil {
			if errors.Is(err, core.ErrDuplicateAgent) || c.fallback == nil {
				return core.Prompt{}, err
			}
			return c.handleError(rc, a, err)
		}
		outputs = append(outputs, out)
	}

	if len(outputs) == 0 {
		return core.EmptyPrompt(core.RoleModel), nil
	}

	return outputs[len(outputs)-1], nil
}

type errorReport struct {
	Agent   string `json:"agent"`
	Failing string `json:"failing,omitempty"`
	Error   string `json:"error"`
}

func (c *Chaining) handleError(rc *core.RunContext, failed core.Agent, cause error) (core.Prompt, error) {
	rc.LogWarn("agent.chaining.fallback", "agent", c.Name(), "failed", failed.Name(),
		"fallback", c.fallback.Name(), "error", cause.Error())

	report := toYAML(errorReport{Agent: failed.Name(), Failing: core.FailingAgent(cause), Error: cause.Error()})

	description := fmt.Sprintf("An error occurred during the process agent named %s. Please handle this situation and provide guidance. Error details: %s", failed.Name(), report)
	if _, err := rc.RecordOperation(core.EmptyPrompt(core.RoleModel), description, core.WithTags(core.TagError)); err != nil {
		return core.Prompt{}, err
	}

	input := core.TextPrompt(core.RoleModel,
		"An error occurred",
		fmt.Sprintf("Error description: %s\n\n%s", cause.Error(), report),
	)

	return rc.RunAgent(c.fallback, []core.Prompt{input}, "An error occurred. As a fallback agent, please handle it")
}
