package agent

import (
	"fmt"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/internal/util"
)

const managerInstruction = `You are the Manager AI Agent. Your job is to route user messages to the best-suited specialized AI agent. Follow these steps:

1. Understand the user's message and intent.
2. Review the conversation history for context.
3. Select the best-suited AI agent.

Your output must be in this JSON format:
{
"agent": "<only one agent name>",
"feedback": "<further feedback for that agent to perform the work better if there is>"
}`

const agentCatalogueTemplate = `Available agents:
{{range .}}- {{.Name}}: {{.Description}}
{{end}}`

const continuePrompt = "Please help me to continue the process according to the provided conversation and feedback"

// ManagerOptions configure a Manager.
type ManagerOptions struct {
	Options

	// Summarizer condenses prior records into routing context. Defaults to
	// the candidate named SummaryAgent, or a new Summary agent.
	Summarizer core.Agent
}

// Manager routes the conversation to exactly one candidate agent chosen by
// the model via a {"agent", "feedback"} JSON envelope.
type Manager struct {
	BaseAgent

	candidates []core.Agent
	summarizer core.Agent
}

// Route is a parsed routing decision.
type Route struct {
	Agent    string
	Feedback string
}

// NewManager creates a Manager choosing among candidates.
func NewManager(candidates []core.Agent, optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{
		Options: Options{
			Name:             ManagerAgentName,
			Description:      "The Manager AI Agent routes user messages to the most suitable specialized AI, ensuring efficient and accurate responses based on user intent and conversation history",
			ShortDescription: "Routes user messages to the best-suited specialized AI agent",
			OutputTags:       []string{core.TagRouting},
		},
	}

	for _, c := range candidates {
		if c.Name() == SummaryAgentName {
			opts.Summarizer = c
		}
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Summarizer == nil {
		opts.Summarizer = NewSummary()
	}

	if opts.SystemInstruction == "" {
		opts.SystemInstruction = managerInstruction + "\n\n" + AgentCatalogue(candidates)
	}

	return &Manager{
		BaseAgent:  NewBaseAgent(opts.Options),
		candidates: slices.Clone(candidates),
		summarizer: opts.Summarizer,
	}
}

// Candidates returns the agents the manager may route to.
func (m *Manager) Candidates() []core.Agent { return slices.Clone(m.candidates) }

// Run implements core.Agent.
func (m *Manager) Run(rc *core.RunContext, inputs []core.Prompt) (core.Prompt, error) {
	prompts, question, err := m.routingPrompts(rc, inputs)
	if err != nil {
		return core.Prompt{}, err
	}

	rec, err := rc.Query(prompts)
	if err != nil {
		return core.Prompt{}, err
	}

	route, err := ParseRoute(rec.Output.Text())
	if err != nil {
		return core.Prompt{}, err
	}

	target := m.find(route.Agent)
	if target == nil {
		return core.Prompt{}, fmt.Errorf("%w: %q", core.ErrNoSuitableAgent, route.Agent)
	}

	if _, err := rc.RecordOperation(rec.Output, "routing to "+target.Name(), core.WithQueryIDs(rec.ID)); err != nil {
		return core.Prompt{}, err
	}

	rc.LogInfo("agent.manager.route", "agent", m.Name(), "target", target.Name())

	routed := append([]core.Prompt(nil), inputs...)
	if len(routed) == 0 && question != nil {
		routed = append(routed, *question)
	}

	description := route.Feedback
	if description != "" {
		routed = append(routed, core.UserText(fmt.Sprintf("Feedback from %s: %s", m.Name(), route.Feedback)))
	} else {
		description = "routed by " + m.Name()
	}

	return rc.RunAgent(target, routed, description)
}

// routingPrompts builds summaries of prior records followed by the latest
// user input, or by a request to continue when the last record is not user
// input. question is the latest user input prompt, if any.
func (m *Manager) routingPrompts(rc *core.RunContext, inputs []core.Prompt) ([]core.Prompt, *core.Prompt, error) {
	prev, last, err := core.SplitLast(rc.Records())
	if err != nil {
		if len(inputs) == 0 {
			return nil, nil, err
		}
		return append([]core.Prompt(nil), inputs...), nil, nil
	}

	var (
		toSummarize = prev
		tail        []core.Prompt
		question    *core.Prompt
	)

	if last.HasTag(core.TagUserInput) {
		q := last.Prompt
		question = &q
		tail = append(tail, q)
	} else {
		toSummarize = append(slices.Clone(prev), last)
		tail = append(tail, core.UserText(continuePrompt))
	}

	records := summarizable(toSummarize)
	if err := SummarizeRecords(rc, m.summarizer, records); err != nil {
		return nil, nil, err
	}

	prompts := append(SummaryPrompts(records), inputs...)
	prompts = append(prompts, tail...)

	return core.DedupPrompts(prompts), question, nil
}

func (m *Manager) find(name string) core.Agent {
	for _, c := range m.candidates {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// ParseRoute extracts the routing envelope from model text. The substring
// between the first '{' and the last '}' must be a JSON object with a
// non-empty "agent" field.
func ParseRoute(text string) (Route, error) {
	raw, ok := util.ExtractJSONObject(text)
	if !ok || !gjson.Valid(raw) {
		return Route{}, fmt.Errorf("%w: routing response is not a JSON envelope", core.ErrInvalidFormat)
	}

	res := gjson.Parse(raw)
	if !res.IsObject() {
		return Route{}, fmt.Errorf("%w: routing response is not a JSON object", core.ErrInvalidFormat)
	}

	agent := res.Get("agent")
	if agent.Type != gjson.String || agent.String() == "" {
		return Route{}, fmt.Errorf("%w: routing response lacks an agent name", core.ErrInvalidFormat)
	}

	return Route{Agent: agent.String(), Feedback: res.Get("feedback").String()}, nil
}

// AgentCatalogue lists agents as "- Name: description" lines.
func AgentCatalogue(agents []core.Agent) string {
	infos := make([]core.AgentInfo, 0, len(agents))
	for _, a := range agents {
		infos = append(infos, core.InfoOf(a))
	}
	return render(agentCatalogueTemplate, infos)
}
