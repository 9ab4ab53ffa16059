package core

// Agent is the capability shared by every orchestration behavior. Metadata
// methods are consulted by RunContext.Query to configure each model call.
// Implementations should be pointers: the session recognizes a repeated
// registration by identity, and non-comparable values count as distinct.
type Agent interface {
	Name() string
	Description() string
	ShortDescription() string

	// Tools returns the tools the agent may call. May be empty.
	Tools() []Tool
	// SystemInstruction returns the instruction sent with every query. May be empty.
	SystemInstruction() string
	// OutputTags returns the default tags stamped on the agent's operation records.
	OutputTags() []string
	// GenerationConfig returns sampling overrides for the agent's queries. May be nil.
	GenerationConfig() *GenerationConfig

	// Run executes the agent inside its own run context.
	Run(rc *RunContext, inputs []Prompt) (Prompt, error)
}

// AgentInfo carries identifying details about an active agent.
type AgentInfo struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	ShortDescription string `json:"shortDescription"`
}

// InfoOf extracts the identifying details of a.
func InfoOf(a Agent) AgentInfo {
	return AgentInfo{Name: a.Name(), Description: a.Description(), ShortDescription: a.ShortDescription()}
}
