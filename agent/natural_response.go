package agent

import "github.com/hupe1980/agentloom/core"

const naturalResponseInstruction = `You are an AI agent specialized in reviewing and enhancing the final outputs of other AI agents. Your primary functions are:

1. Analyze the entire conversation history to understand the full context.
2. Review the last output from the previous agent.
3. Rewrite the final answer in a more natural, conversational tone while maintaining accuracy and relevance.
4. Ensure the response addresses the user's original query comprehensively.
5. Add any necessary context or clarifications based on the conversation history.
6. Maintain a consistent tone and style throughout the response.

Your goal is to make the responses feel more human-like and engaging while preserving the informational content and accuracy of the original output.`

const naturalResponseTrigger = "Please rewrite this response in a more natural, conversational way, ensuring it addresses the user's original query and maintains the accuracy of the information. Consider the entire conversation context in your reformulation."

// NewNaturalResponse creates the agent that rewrites the latest output as a
// conversational answer to the user, using the whole conversation.
func NewNaturalResponse(optFns ...func(o *SimpleOptions)) *Simple {
	trigger := core.UserText(naturalResponseTrigger)

	return NewSimple(NaturalResponseAgentName, append([]func(o *SimpleOptions){func(o *SimpleOptions) {
		o.Description = "An AI agent that reviews the last output of other agents and rewrites the final answer to the user query in a natural way, considering the context of the whole conversation"
		o.ShortDescription = "Enhances AI responses for natural human-like communication"
		o.SystemInstruction = naturalResponseInstruction
		o.OutputTags = []string{core.TagAnswer}
		o.TriggerPrompt = &trigger
		o.InputBuilder = func(rc *core.RunContext, inputs []core.Prompt) ([]core.Prompt, error) {
			return withConversation(rc, inputs), nil
		}
		o.RecordDescription = "natural response"
	}}, optFns...)...)
}
