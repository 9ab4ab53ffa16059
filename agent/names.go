package agent

// Default agent names.
const (
	ManagerAgentName          = "ManagerAgent"
	ChainingAgentName         = "ChainingAgent"
	PlannerAgentName          = "PlannerAgent"
	PlanBreakdownAgentName    = "PlanBreakdownAgent"
	ExecutionAgentName        = "ExecutionAgent"
	CriticAgentName           = "CriticAgent"
	NaturalResponseAgentName  = "NaturalResponseAgent"
	SummaryAgentName          = "SummaryAgent"
	FactualKnowledgeAgentName = "FactualKnowledgeAgent"
)

// Output tags used by the built-in agents.
const (
	TagExecution         = "execution"
	TagExecutionComplete = "execution_complete"
	TagCritique          = "critique"
	TagFeedback          = "feedback"
	TagFinalOutput       = "final_output"
)
