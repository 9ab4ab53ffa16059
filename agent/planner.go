package agent

import "github.com/hupe1980/agentloom/core"

const plannerInstruction = `You are a Planner AI Agent, an expert in creating detailed and actionable plans that can be processed by an Execution AI. Your role is to carefully analyze user queries, available tools, and conversation history to construct comprehensive plans. Follow these guidelines:
1. Thoroughly analyze the user's query / inputs / requests / problems and intent.
2. Review the conversation history for context and previous actions or feedback.
3. Consider the available tools and their capabilities.
4. Use your knowledge to fill in gaps where necessary.
5. Create a step-by-step plan that leads to fulfilling the target.
6. Ensure each step is actionable and based on facts from tools or conversation history.
7. Express the plan in plain text, avoiding any code or scripts.
8. Optimize the plan based on any feedback or actions from previous interactions.

Your output should be a clear, detailed plan that an Execution AI can follow to achieve the user's goal.`

const toolCatalogueTemplate = `Available tools:
{{range $i, $t := .}}{{if $i}}
{{end}}Tool Name: {{$t.Name}}; Description: {{$t.Description}}{{end}}`

// NewPlanner creates the agent that turns the conversation so far into a
// plain-text plan for an Execution agent. The tool catalogue is described
// in the trigger prompt; the tools are not declared to the model, so the
// planner cannot call them. Output records are tagged "plan".
func NewPlanner(tools []core.Tool, optFns ...func(o *SimpleOptions)) *Simple {
	trigger := core.TextPrompt(core.RoleUser,
		"Create a detailed plan to address the user's query / inputs / requests / problems",
		ToolCatalogue(tools),
		"Remember to create a plan that leads to the final answer, using available tools and information from the conversation history. The plan should be in plain text and actionable by an Execution AI.",
	)

	return NewSimple(PlannerAgentName, append([]func(o *SimpleOptions){func(o *SimpleOptions) {
		o.Description = "An AI agent specialized in creating detailed, actionable plans based on user queries, available tools, and conversation history"
		o.ShortDescription = "Creates optimized plans for execution by other AI agents"
		o.SystemInstruction = plannerInstruction
		o.OutputTags = []string{core.TagPlan}
		o.TriggerPrompt = &trigger
		o.InputBuilder = func(rc *core.RunContext, inputs []core.Prompt) ([]core.Prompt, error) {
			return withConversation(rc, inputs), nil
		}
		o.RecordDescription = "plan"
	}}, optFns...)...)
}

// ToolCatalogue lists tools as "Tool Name: X; Description: Y" lines.
func ToolCatalogue(tools []core.Tool) string {
	type entry struct{ Name, Description string }

	entries := make([]entry, 0, len(tools))
	for _, t := range tools {
		entries = append(entries, entry{Name: t.Name(), Description: t.Description()})
	}

	return render(toolCatalogueTemplate, entries)
}
