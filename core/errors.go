package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateAgent is returned when two distinct agent instances share a name.
	ErrDuplicateAgent = errors.New("duplicate agent name")
	// ErrToolNotFound is returned when a function call names an undeclared tool.
	ErrToolNotFound = errors.New("tool not found")
	// ErrInvalidFormat is returned when model output violates a required format.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrNoSuitableAgent is returned when a routing decision names no known agent.
	ErrNoSuitableAgent = errors.New("no suitable agent")
	// ErrExhausted is returned when a bounded loop runs out of iterations or time.
	ErrExhausted = errors.New("execution timed out / exhausted")
	// ErrNoPlan is returned when no plan record exists to break down.
	ErrNoPlan = errors.New("no plan found")
	// ErrEmptyHistory is returned when an operation needs at least one record.
	ErrEmptyHistory = errors.New("no data found")
	// ErrUnknownQuery is returned when an operation links a query id that was never issued.
	ErrUnknownQuery = errors.New("unknown query record")
	// ErrEmptyResponse is returned when a gateway reports neither a response nor an error.
	ErrEmptyResponse = errors.New("gateway returned no response")
	// ErrInvalidPrompt is returned for values that cannot be normalized into a Prompt.
	ErrInvalidPrompt = errors.New("invalid prompt")
)

// AgentError attributes a failure to the agent whose operation produced it.
type AgentError struct {
	Agent string // Name of the failing agent
	Op    string // Operation that failed (run, query, route, ...)
	Err   error
}

// NewAgentError wraps err with the agent name and operation.
func NewAgentError(agent, op string, err error) *AgentError {
	return &AgentError{Agent: agent, Op: op, Err: err}
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %s: %s: %v", e.Agent, e.Op, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *AgentError) Unwrap() error { return e.Err }

// FailingAgent returns the innermost agent name recorded in err's chain, or
// an empty string when none is present.
func FailingAgent(err error) string {
	name := ""
	for err != nil {
		var ae *AgentError
		if !errors.As(err, &ae) {
			break
		}
		name = ae.Agent
		err = ae.Err
	}
	return name
}
