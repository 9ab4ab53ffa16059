package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentloom/core"
)

// SatisfiedSentinel opens a critique that accepts the target's output.
const SatisfiedSentinel = "NO_FURTHER_IMPROVEMENTS_NEEDED"

const criticInstruction = `You are a Critic AI Agent, specialized in analyzing and improving the output of other AI agents. Your role is to carefully examine the user query, agent objective, input, and output to identify areas for improvement. Follow these guidelines:
1. Thoroughly analyze the user's original query and intent.
2. Review the agent's objective and expected output.
3. Examine the agent's input and output carefully.
4. Identify any discrepancies, inaccuracies, or areas where the output falls short of the objective.
5. Provide specific, constructive criticism on what aspects of the output need improvement.
6. Suggest potential fixes or enhancements to address the identified issues.
7. Be thorough but concise in your critique.
8. If the output is satisfactory and meets all requirements, clearly state "` + SatisfiedSentinel + `" at the beginning of your response, followed by an explanation of why the output is satisfactory.

Your critique should be actionable and aimed at helping the agent produce better results in subsequent iterations.`

const critiqueRequest = `Please provide a critique of the agent's current output. Identify any remaining issues, improvements made, and suggest further enhancements. If the output is satisfactory and significantly improved from previous iterations, start your response with "` + SatisfiedSentinel + `" and explain why.`

// CriticOptions configure a Critic.
type CriticOptions struct {
	Options

	// MaxIterations bounds the improve loop. Defaults to 5.
	MaxIterations int
	// Timeout is checked before every iteration. Defaults to 60s.
	Timeout time.Duration
}

// Critic runs a target agent in an improve loop: every output is critiqued
// and the critique history is fed back to the target. The loop ends when a
// critique starts with SatisfiedSentinel. Exhaustion returns the latest
// output.
type Critic struct {
	BaseAgent

	target        core.Agent
	maxIterations int
	timeout       time.Duration
}

// NewCritic creates a Critic improving target.
func NewCritic(target core.Agent, optFns ...func(o *CriticOptions)) *Critic {
	opts := CriticOptions{
		Options: Options{
			Name:              CriticAgentName,
			Description:       "An AI agent that critiques the output of another agent to improve its performance",
			ShortDescription:  "Provides constructive criticism to enhance agent outputs",
			SystemInstruction: criticInstruction,
			OutputTags:        []string{TagCritique, TagFeedback},
		},
		MaxIterations: 5,
		Timeout:       60 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Critic{
		BaseAgent:     NewBaseAgent(opts.Options),
		target:        target,
		maxIterations: opts.MaxIterations,
		timeout:       opts.Timeout,
	}
}

// Target returns the improved agent.
func (c *Critic) Target() core.Agent { return c.target }

// Run implements core.Agent.
func (c *Critic) Run(rc *core.RunContext, inputs []core.Prompt) (core.Prompt, error) {
	start := time.Now()

	var (
		current   *core.Prompt
		produced  int
		outputs   []core.Prompt
		critiques []string
	)

	for iteration := 1; iteration <= c.maxIterations; iteration++ {
		if c.timeout > 0 && time.Since(start) > c.timeout {
			rc.LogWarn("agent.critic.timeout", "agent", c.Name(), "iterations", produced)
			break
		}

		if err := rc.Context.Err(); err != nil {
			return core.Prompt{}, err
		}

		targetInputs := append([]core.Prompt(nil), inputs...)
		targetInputs = append(targetInputs, history(outputs, critiques)...)
		if iteration > 1 {
			targetInputs = append(targetInputs, core.UserText("Please improve the output based on previous critiques and avoid repeating past issues."))
		}

		out, err := rc.RunAgent(c.target, targetInputs, fmt.Sprintf("Iteration %d", iteration))
		if err != nil {
			return core.Prompt{}, err
		}

		current = &out
		produced = iteration

		parts := []string{
			"Agent objective: " + c.target.Description(),
			fmt.Sprintf("Current output (Iteration %d):\n%s", iteration, toYAML(out)),
		}
		for _, p := range history(outputs, critiques) {
			parts = append(parts, p.Text())
		}
		parts = append(parts, critiqueRequest)

		rec, err := rc.Query([]core.Prompt{core.TextPrompt(core.RoleUser, parts...)})
		if err != nil {
			return core.Prompt{}, err
		}

		if _, err := rc.RecordOperation(rec.Output, fmt.Sprintf("Critic feedback - Iteration %d", iteration), core.WithQueryIDs(rec.ID)); err != nil {
			return core.Prompt{}, err
		}

		critique := rec.Output.FirstText()
		if strings.HasPrefix(strings.TrimSpace(critique), SatisfiedSentinel) {
			break
		}

		outputs = append(outputs, out)
		critiques = append(critiques, critique)
	}

	if current == nil {
		return core.Prompt{}, fmt.Errorf("%w: no output produced", core.ErrExhausted)
	}

	if _, err := rc.RecordOperation(*current, fmt.Sprintf("Final improved output - Iteration %d", produced), core.WithExtraTags(TagFinalOutput)); err != nil {
		return core.Prompt{}, err
	}

	return *current, nil
}

// history renders previous outputs followed by previous critiques.
func history(outputs []core.Prompt, critiques []string) []core.Prompt {
	prompts := make([]core.Prompt, 0, len(outputs)+len(critiques))
	for i, o := range outputs {
		prompts = append(prompts, core.UserText(fmt.Sprintf("Previous output (Iteration %d):\n%s", i+1, toYAML(o))))
	}
	for i, c := range critiques {
		prompts = append(prompts, core.UserText(fmt.Sprintf("Previous critique (Iteration %d):\n%s", i+1, c)))
	}
	return prompts
}
