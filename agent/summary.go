package agent

import (
	"slices"

	"github.com/hupe1980/agentloom/core"
)

const summaryInstruction = `You are an AI agent specialized in summarizing data to support other AI agents. Your primary function is to analyze and condense outputs from various sources, including other agents, function calls, function responses, and user-provided data. When presented with information to summarize, follow these steps:
Identify the source and type of the input (e.g., agent output, function call, user data).
Determine the key elements and most relevant information within the input.
Analyze for patterns, inconsistencies, or notable points across multiple inputs if applicable.
Synthesize your analysis into a structured summary, including:
a) An overview of the input source(s)
b) Key points or findings
c) Relevant details or data points
d) Potential implications for the requesting agent or system

Your summaries should be concise, clear, and tailored to assist other AI agents or systems in their decision-making processes.`

const summaryTrigger = "Summarize the given conversation"

// NewSummary creates the agent that condenses its inputs, or the whole
// conversation when called without inputs. With nothing to summarize it
// returns an empty prompt without querying the model.
func NewSummary(optFns ...func(o *SimpleOptions)) *Simple {
	return NewSimple(SummaryAgentName, append([]func(o *SimpleOptions){func(o *SimpleOptions) {
		o.Description = "An AI agent that summarizes outputs from other agents, function calls, and user data, providing concise, structured insights to support decision-making processes in multi-agent systems"
		o.ShortDescription = "Support agent summarizing diverse inputs for AI system optimization"
		o.SystemInstruction = summaryInstruction
		o.OutputTags = []string{core.TagSummary}
		o.InputBuilder = func(rc *core.RunContext, inputs []core.Prompt) ([]core.Prompt, error) {
			prompts := inputs
			if len(prompts) == 0 {
				prompts = rc.ConversationPrompts()
			}
			if len(prompts) == 0 {
				return nil, nil
			}
			return append(slices.Clone(prompts), core.UserText(summaryTrigger)), nil
		}
		o.RecordDescription = "summary"
	}}, optFns...)...)
}
