package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/logging"
	"github.com/hupe1980/agentloom/session"
)

// DefaultQuestionPrefix is prepended to every question before it enters the
// session.
const DefaultQuestionPrefix = "This is the user Query: "

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Store persists finished runs. Defaults to an in-memory store.
	Store core.SessionStore
	// Logger receives runner, session and agent logs.
	Logger logging.Logger
	// MaxModelCalls caps gateway calls per run. Zero means unlimited.
	MaxModelCalls int
	// QuestionPrefix is prepended to the question recorded as user input.
	QuestionPrefix string
	// SessionOptions are applied to every created session.
	SessionOptions []func(o *core.SessionOptions)
}

// Runner answers one question at a time per call: it loads the chat's prior
// messages, runs the root agent in a fresh Session and persists the result
// as a new Message. Public methods are safe for concurrent use.
type Runner struct {
	agent   core.Agent
	gateway core.Gateway

	store          core.SessionStore
	logger         logging.Logger
	maxModelCalls  int
	questionPrefix string
	sessionOpts    []func(o *core.SessionOptions)

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

// New constructs a Runner for agent on gateway.
func New(agent core.Agent, gateway core.Gateway, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Store:          session.NewInMemoryStore(),
		Logger:         logging.NoOpLogger{},
		MaxModelCalls:  100,
		QuestionPrefix: DefaultQuestionPrefix,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		agent:          agent,
		gateway:        gateway,
		store:          opts.Store,
		logger:         opts.Logger,
		maxModelCalls:  opts.MaxModelCalls,
		questionPrefix: opts.QuestionPrefix,
		sessionOpts:    opts.SessionOptions,
		activeRuns:     make(map[string]context.CancelFunc),
	}
}

// Agent returns the root agent.
func (r *Runner) Agent() core.Agent { return r.agent }

// Store returns the message store.
func (r *Runner) Store() core.SessionStore { return r.store }

// Ask runs the root agent on question within chatID and returns the
// persisted message. A failed run is not persisted.
func (r *Runner) Ask(ctx context.Context, chatID, question string) (*core.Message, error) {
	res, err := r.Run(ctx, chatID, question)
	if err != nil {
		return nil, err
	}

	msg := core.NewMessage(chatID, question, res)
	if err := r.store.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	return msg, nil
}

// Run executes one request without persisting it and returns the session
// result.
func (r *Runner) Run(ctx context.Context, chatID, question string) (core.Result, error) {
	prior, err := r.store.ListByChat(ctx, chatID)
	if err != nil {
		return core.Result{}, fmt.Errorf("load chat %s: %w", chatID, err)
	}

	optFns := append([]func(o *core.SessionOptions){func(o *core.SessionOptions) {
		o.History = core.HistoryPrompts(prior)
		o.Logger = r.logger
		o.MaxModelCalls = r.maxModelCalls
	}}, r.sessionOpts...)

	sess := core.NewSession(r.gateway, optFns...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.track(sess.ID(), cancel)
	defer r.untrack(sess.ID())

	start := time.Now()
	r.logger.Info("runner.run.start", "chat_id", chatID, "session_id", sess.ID(), "agent", r.agent.Name(), "history", len(prior))

	sess.AddUserInput(core.UserText(r.questionPrefix + question))

	if _, err := sess.RunAgent(ctx, r.agent, nil); err != nil {
		r.logger.Error("runner.run.error", "chat_id", chatID, "session_id", sess.ID(),
			"failing_agent", core.FailingAgent(err), "error", err.Error())
		return core.Result{}, fmt.Errorf("agent execution failed: %w", err)
	}

	res := sess.Result()

	r.logger.Info("runner.run.done", "chat_id", chatID, "session_id", sess.ID(),
		"duration_ms", time.Since(start).Milliseconds(), "total_tokens", res.TotalUsage.TotalTokens)

	return res, nil
}

// Cancel cancels the context of an in-flight run by session id. The run
// stops at its next cancellation check.
func (r *Runner) Cancel(sessionID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[sessionID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", sessionID)
	}

	cancel()

	return nil
}

// ActiveRuns returns the session ids of in-flight runs.
func (r *Runner) ActiveRuns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.activeRuns))
	for id := range r.activeRuns {
		ids = append(ids, id)
	}

	return ids
}

func (r *Runner) track(id string, cancel context.CancelFunc) {
	r.mu.Lock()
	r.activeRuns[id] = cancel
	r.mu.Unlock()
}

func (r *Runner) untrack(id string) {
	r.mu.Lock()
	delete(r.activeRuns, id)
	r.mu.Unlock()
}
