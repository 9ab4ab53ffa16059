// Package agentloom provides a high-level façade over the orchestration
// core: a root agent (usually a Manager routing to specialized agents), a
// model gateway and a message store. Most applications interact with this
// package by:
//  1. Building a root agent, e.g. NewDefaultManager
//  2. Creating an AgentLoom via New() (optionally overriding the in‑memory store)
//  3. Asking questions per chat with Ask
//
// The façade delegates request handling to runner.Runner. FromConfig wires
// everything from environment configuration.
package agentloom

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/agentloom/agent"
	"github.com/hupe1980/agentloom/config"
	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/logging"
	"github.com/hupe1980/agentloom/runner"
	"github.com/hupe1980/agentloom/session"
	"github.com/hupe1980/agentloom/session/sqlite"
	"github.com/hupe1980/agentloom/tool/jira"
)

// JiraAgentName is the name of the Jira plan-and-execute agent.
const JiraAgentName = "JiraAgent"

// Options configures the AgentLoom instance.
type Options struct {
	// Store persists answered questions (defaults to an in-memory store).
	Store core.SessionStore
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
	// MaxModelCalls caps gateway calls per question. Zero means unlimited.
	MaxModelCalls int
	// QuestionPrefix is prepended to each question recorded as user input.
	QuestionPrefix string
}

// AgentLoom is the high-level façade aggregating the runner and its store.
type AgentLoom struct {
	runner *runner.Runner
	store  core.SessionStore
	closer func() error
}

// New creates an AgentLoom answering with root on gateway.
func New(root core.Agent, gateway core.Gateway, optFns ...func(o *Options)) *AgentLoom {
	opts := Options{
		Store:          session.NewInMemoryStore(),
		Logger:         logging.NoOpLogger{},
		MaxModelCalls:  100,
		QuestionPrefix: runner.DefaultQuestionPrefix,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	r := runner.New(root, gateway, func(o *runner.Options) {
		o.Store = opts.Store
		o.Logger = opts.Logger
		o.MaxModelCalls = opts.MaxModelCalls
		o.QuestionPrefix = opts.QuestionPrefix
	})

	return &AgentLoom{runner: r, store: opts.Store}
}

// Ask answers question within chatID and returns the persisted message.
func (a *AgentLoom) Ask(ctx context.Context, chatID, question string) (*core.Message, error) {
	return a.runner.Ask(ctx, chatID, question)
}

// History returns a chat's messages, oldest first.
func (a *AgentLoom) History(ctx context.Context, chatID string) ([]*core.Message, error) {
	return a.store.ListByChat(ctx, chatID)
}

// ChatUsage sums the token usage of every message in a chat.
func (a *AgentLoom) ChatUsage(ctx context.Context, chatID string) (core.Usage, error) {
	msgs, err := a.store.ListByChat(ctx, chatID)
	if err != nil {
		return core.Usage{}, err
	}
	return core.ChatUsage(msgs), nil
}

// Runner exposes the underlying runner (advanced use).
func (a *AgentLoom) Runner() *runner.Runner { return a.runner }

// Close releases resources opened by FromConfig.
func (a *AgentLoom) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

// NewJiraAgent builds the plan-and-execute pipeline over the Jira tools.
func NewJiraAgent(client *jira.Client, optFns ...func(o *agent.PlanExecuteOptions)) *agent.Chaining {
	tools := []core.Tool{jira.NewTool(client)}

	return agent.NewPlanExecute(JiraAgentName,
		"An AI agent specialized in checking JIRA information and performing relevant actions for JIRA projects",
		tools,
		append([]func(o *agent.PlanExecuteOptions){func(o *agent.PlanExecuteOptions) {
			o.ShortDescription = "Manages JIRA tasks and provides project insights"
			o.OutputTags = []string{"jira", "project_management"}
		}}, optFns...)...,
	)
}

// NewDefaultManager routes between the given specialists, FactualKnowledge
// and Summary.
func NewDefaultManager(specialists ...core.Agent) *agent.Manager {
	return newManager(specialists, agent.NewFactualKnowledge())
}

func newManager(specialists []core.Agent, factual core.Agent) *agent.Manager {
	candidates := append([]core.Agent(nil), specialists...)
	candidates = append(candidates, factual, agent.NewSummary())

	return agent.NewManager(candidates)
}

// NewReviewedFactualKnowledge wraps FactualKnowledge in a Critic loop.
func NewReviewedFactualKnowledge(optFns ...func(o *agent.CriticOptions)) *agent.Critic {
	return agent.NewCritic(agent.NewFactualKnowledge(), append([]func(o *agent.CriticOptions){func(o *agent.CriticOptions) {
		o.Description = "Answers general knowledge questions and refines each answer through critique until it is satisfactory"
		o.ShortDescription = "Provides reviewed factual answers to general knowledge questions"
	}}, optFns...)...)
}

// FromConfig wires gateway, logger, store and the default manager from cfg.
// The Jira agent is included when a Jira base URL is configured.
func FromConfig(ctx context.Context, cfg *config.Config) (*AgentLoom, error) {
	logger, err := config.NewLogger(cfg, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	gw, err := config.NewGateway(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gateway: %w", err)
	}

	var (
		store  core.SessionStore = session.NewInMemoryStore()
		closer func() error
	)

	if cfg.DBPath != "" {
		s, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		store, closer = s, s.Close
	}

	var specialists []core.Agent
	if cfg.JiraBaseURL != "" {
		client := jira.NewClient(func(o *jira.Options) {
			o.BaseURL = cfg.JiraBaseURL
			o.Authorization = cfg.JiraAuthorization
		})
		specialists = append(specialists, NewJiraAgent(client, func(o *agent.PlanExecuteOptions) {
			o.Execution = append(o.Execution, func(eo *agent.ExecutionOptions) {
				eo.MaxIterations = cfg.ExecutionMaxIterations
				eo.Timeout = cfg.ExecutionTimeout
			})
		}))
	}

	if len(specialists) == 0 {
		logger.Warn("agentloom.config.no_specialists", "reason", "jira base url not configured")
	}

	var factual core.Agent = agent.NewFactualKnowledge()
	if cfg.CriticEnabled {
		factual = NewReviewedFactualKnowledge(func(o *agent.CriticOptions) {
			o.MaxIterations = cfg.CriticMaxIterations
			o.Timeout = cfg.CriticTimeout
		})
	}

	a := New(newManager(specialists, factual), gw, func(o *Options) {
		o.Store = store
		o.Logger = logger
		o.MaxModelCalls = cfg.MaxModelCalls
	})
	a.closer = closer

	return a, nil
}

// ErrNoAnswer is returned by AnswerText when a message carries no text.
var ErrNoAnswer = errors.New("no answer")

// AnswerText returns the text of a message's answer.
func AnswerText(msg *core.Message) (string, error) {
	if msg == nil || msg.Answer.Text() == "" {
		return "", ErrNoAnswer
	}
	return msg.Answer.Text(), nil
}
