package agent

import (
	"slices"

	"github.com/hupe1980/agentloom/core"
)

// Options carry the metadata every agent exposes through core.Agent.
type Options struct {
	Name             string
	Description      string
	ShortDescription string // Defaults to Description
	// SystemInstruction is sent with every query of the agent.
	SystemInstruction string
	// Tools are declared to the model on every query.
	Tools []core.Tool
	// OutputTags are stamped on the agent's operation records.
	OutputTags       []string
	GenerationConfig *core.GenerationConfig
}

// BaseAgent implements the metadata half of core.Agent. Embed it in concrete
// agents and supply a Run method.
type BaseAgent struct {
	name              string
	description       string
	shortDescription  string
	systemInstruction string
	tools             []core.Tool
	outputTags        []string
	config            *core.GenerationConfig
}

// NewBaseAgent constructs a BaseAgent from opts.
func NewBaseAgent(opts Options) BaseAgent {
	short := opts.ShortDescription
	if short == "" {
		short = opts.Description
	}

	return BaseAgent{
		name:              opts.Name,
		description:       opts.Description,
		shortDescription:  short,
		systemInstruction: opts.SystemInstruction,
		tools:             slices.Clone(opts.Tools),
		outputTags:        slices.Clone(opts.OutputTags),
		config:            opts.GenerationConfig,
	}
}

// Name returns the unique agent name.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of the agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// ShortDescription returns a one-line summary used in routing catalogues.
func (b *BaseAgent) ShortDescription() string { return b.shortDescription }

// Tools returns the declared tools.
func (b *BaseAgent) Tools() []core.Tool { return b.tools }

// SystemInstruction returns the system instruction.
func (b *BaseAgent) SystemInstruction() string { return b.systemInstruction }

// OutputTags returns the default record tags.
func (b *BaseAgent) OutputTags() []string { return b.outputTags }

// GenerationConfig returns sampling overrides or nil.
func (b *BaseAgent) GenerationConfig() *core.GenerationConfig { return b.config }
