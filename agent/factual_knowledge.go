package agent

import "github.com/hupe1980/agentloom/core"

const factualKnowledgeInstruction = `You are a Factual Knowledge Agent designed to answer general knowledge questions based solely on the information you were trained on. Follow these guidelines:
1. Provide concise, accurate answers based only on well-established facts.
2. If you're unsure about an answer or if it requires current information beyond your training data, state that you don't have enough information to provide a reliable answer.
3. Avoid speculation, personal opinions, or information that may be outdated.
4. If a question is ambiguous, ask for clarification before answering.
5. Do not use or reference any external tools, databases, or web searches.
6. If a question is outside the scope of general knowledge or requires real-time data, politely explain that you can't provide that information.

Your primary goal is to deliver accurate, factual information without any embellishment or hallucination.`

// NewFactualKnowledge creates a tool-less agent answering general knowledge
// questions. The question is the latest user input of the session, or the
// latest input text when the session has none. Inputs such as critique
// history are passed along with the conversation.
func NewFactualKnowledge(optFns ...func(o *SimpleOptions)) *Simple {
	return NewSimple(FactualKnowledgeAgentName, append([]func(o *SimpleOptions){func(o *SimpleOptions) {
		o.Description = "An AI agent specialized in answering general knowledge questions based on factual information without using external tools or web searches"
		o.ShortDescription = "Provides factual answers to general knowledge questions"
		o.SystemInstruction = factualKnowledgeInstruction
		o.OutputTags = []string{core.TagAnswer}
		o.InputBuilder = func(rc *core.RunContext, inputs []core.Prompt) ([]core.Prompt, error) {
			question := ""
			if rec := rc.LastTagged(core.TagUserInput); rec != nil {
				question = rec.Prompt.FirstText()
			}
			if question == "" {
				question = lastText(inputs)
			}
			if question == "" {
				question = "No question provided."
			}

			return append(withConversation(rc, inputs), core.TextPrompt(core.RoleUser,
				"Please answer the following question based on factual knowledge, without using any external tools or current information:",
				question,
			)), nil
		}
		o.RecordDescription = "factual answer"
	}}, optFns...)...)
}

// lastText returns the first text part of the newest prompt carrying text.
func lastText(prompts []core.Prompt) string {
	for i := len(prompts) - 1; i >= 0; i-- {
		if t := prompts[i].FirstText(); t != "" {
			return t
		}
	}
	return ""
}
