package core

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentloom/logging"
)

// instrumentationName identifies spans emitted by this package.
const instrumentationName = "github.com/hupe1980/agentloom/core"

// SessionOptions configures a Session.
type SessionOptions struct {
	// ID overrides the generated session id.
	ID string
	// History is prior conversation prepended to every gateway request.
	History []Prompt
	// Logger receives session and agent logs. Defaults to NoOpLogger.
	Logger logging.Logger
	// Tracer emits spans around model calls and agent runs. Defaults to the global provider.
	Tracer trace.Tracer
	// MaxModelCalls caps gateway calls for the session. Zero means unlimited.
	MaxModelCalls int
	// Now overrides the clock (tests).
	Now func() time.Time
}

// QueryRequest describes a model call issued on behalf of an agent.
type QueryRequest struct {
	AgentName         string
	Path              TreePath
	Prompts           []Prompt
	SystemInstruction string
	Tools             []ToolDeclaration
	Config            *GenerationConfig
}

// Result is the state of a finished top-level run, sufficient for an
// external layer to persist one chat message.
type Result struct {
	SessionID    string             `json:"sessionId"`
	FinalAnswer  Prompt             `json:"finalAnswer"`
	TotalUsage   Usage              `json:"totalUsage"`
	ActiveAgents []AgentInfo        `json:"activeAgents"`
	Operations   []*OperationRecord `json:"operations"`
	Queries      []*QueryRecord     `json:"queries"`
}

// Session is the root scope of one external request. It owns the gateway
// handle, the active agent registry, the usage total and the append-only
// query and operation logs. Mutations go through Session methods only.
type Session struct {
	id      string
	gateway Gateway
	history []Prompt
	rootID  string

	mu          sync.Mutex
	agents      map[string]Agent
	agentOrder  []string
	usage       usageAccumulator
	queries     []*QueryRecord
	queryIndex  map[string]*QueryRecord
	operations  []*OperationRecord
	finalAnswer Prompt

	limiter *ModelLimiter
	tracer  trace.Tracer
	now     func() time.Time

	*loggerAdapter
}

// NewSession creates a session bound to gateway.
func NewSession(gateway Gateway, optFns ...func(o *SessionOptions)) *Session {
	opts := SessionOptions{
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ID == "" {
		opts.ID = NewID()
	}

	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(instrumentationName)
	}

	return &Session{
		id:            opts.ID,
		gateway:       gateway,
		history:       slices.Clone(opts.History),
		agents:        map[string]Agent{},
		queryIndex:    map[string]*QueryRecord{},
		limiter:       NewModelLimiter(opts.MaxModelCalls),
		tracer:        opts.Tracer,
		now:           opts.Now,
		loggerAdapter: newLoggerAdapter(opts.Logger).scoped(opts.ID, nil),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// RootPath returns the path every context of this session descends from.
func (s *Session) RootPath() TreePath { return TreePath{s.id} }

// Gateway returns the model gateway.
func (s *Session) Gateway() Gateway { return s.gateway }

// RegisterActiveAgent records a as active. Registering the same instance
// again is a no-op; a different instance under an existing name fails
// with ErrDuplicateAgent.
func (s *Session) RegisterActiveAgent(a Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.agents[a.Name()]; ok {
		if sameAgent(existing, a) {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrDuplicateAgent, a.Name())
	}

	s.agents[a.Name()] = a
	s.agentOrder = append(s.agentOrder, a.Name())

	return nil
}

// sameAgent reports whether a and b are the same instance. Values that
// cannot be compared, such as structs holding slices, never match.
func sameAgent(a, b Agent) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.ValueOf(a).Comparable() {
		return false
	}
	return a == b
}

// ActiveAgents lists registered agents in registration order.
func (s *Session) ActiveAgents() []AgentInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]AgentInfo, 0, len(s.agentOrder))
	for _, name := range s.agentOrder {
		out = append(out, InfoOf(s.agents[name]))
	}

	return out
}

// Generate calls the gateway with the prior conversation prepended, stores
// the resulting QueryRecord and accumulates its usage.
func (s *Session) Generate(ctx context.Context, req QueryRequest) (*QueryRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := s.tracer.Start(ctx, "session.generate", trace.WithAttributes(
		attribute.String("agentloom.session_id", s.id),
		attribute.String("agentloom.agent", req.AgentName),
		attribute.String("agentloom.tree_path", req.Path.String()),
	))
	defer span.End()

	if err := s.limiter.Acquire(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("generate for %s: %w", req.AgentName, err)
	}

	prompts := make([]Prompt, 0, len(s.history)+len(req.Prompts))
	prompts = append(prompts, s.history...)
	prompts = append(prompts, req.Prompts...)

	requestedAt := s.now()

	resp, err := s.gateway.Generate(ctx, GenerateRequest{
		Prompts:           prompts,
		SystemInstruction: req.SystemInstruction,
		Tools:             req.Tools,
		Config:            req.Config,
	})

	respondedAt := s.now()
	info := s.gateway.Info()

	log := s.loggerAdapter.scoped(s.id, req.Path)

	if err == nil && resp == nil {
		err = ErrEmptyResponse
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.LogModelCall(info.Name, Usage{}, respondedAt.Sub(requestedAt), err)

		return nil, fmt.Errorf("generate for %s: %w", req.AgentName, err)
	}

	output := resp.Prompt
	if output.Role == "" {
		output.Role = RoleModel
	}

	id := NewID()
	record := &QueryRecord{
		ID:          id,
		Path:        req.Path.Extend(id),
		AgentName:   req.AgentName,
		Inputs:      req.Prompts,
		Output:      output,
		Usage:       Usage{}.Add(resp.Usage),
		RequestedAt: requestedAt,
		RespondedAt: respondedAt,
	}

	s.mu.Lock()
	s.queries = append(s.queries, record)
	s.queryIndex[id] = record
	s.usage.add(resp.Usage)
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int("agentloom.input_tokens", record.Usage.InputTokens),
		attribute.Int("agentloom.output_tokens", record.Usage.OutputTokens),
	)
	log.LogModelCall(info.Name, record.Usage, record.Duration(), nil)

	return record, nil
}

// RecordOperation appends an OperationRecord below parent. Linked query
// ids must reference queries already issued by this session.
func (s *Session) RecordOperation(
	parent TreePath,
	agentName string,
	prompt Prompt,
	description string,
	optFns ...func(o *RecordOptions),
) (*OperationRecord, error) {
	var opts RecordOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	tags := append(slices.Clone(opts.Tags), opts.ExtraTags...)

	s.mu.Lock()
	defer s.mu.Unlock()

	var usage Usage
	for _, qid := range opts.QueryIDs {
		q, ok := s.queryIndex[qid]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, qid)
		}
		usage = usage.Add(&q.Usage)
	}

	id := NewID()
	record := &OperationRecord{
		ID:          id,
		Path:        parent.Extend(id),
		Tags:        tags,
		Description: description,
		AgentName:   agentName,
		Prompt:      prompt,
		QueryIDs:    slices.Clone(opts.QueryIDs),
		Usage:       usage,
		CreatedAt:   s.now(),
	}
	s.operations = append(s.operations, record)

	return record, nil
}

// AddUserInput records the external question at the session root.
func (s *Session) AddUserInput(p Prompt) *OperationRecord {
	p.Role = RoleUser
	// no linked queries, cannot fail
	rec, _ := s.RecordOperation(s.RootPath(), "user", p, "user input", WithTags(TagUserInput))
	return rec
}

// SetSummary caches a summary on the operation record with id.
func (s *Session) SetSummary(id, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.operations {
		if r.ID == id {
			r.Summary = summary
			return
		}
	}
}

// NewRunContext creates the scope for one invocation of agent. Without a
// parent the context hangs directly below the session root.
func (s *Session) NewRunContext(ctx context.Context, agent Agent, parent *RunContext) *RunContext {
	if ctx == nil {
		ctx = context.Background()
	}

	base := s.RootPath()
	if parent != nil {
		base = parent.path
	}

	id := newSegment()
	path := base.Extend(id)

	return &RunContext{
		Context:       ctx,
		id:            id,
		path:          path,
		session:       s,
		agent:         agent,
		parent:        parent,
		loggerAdapter: s.loggerAdapter.scoped(s.id, path),
	}
}

// RunAgent registers agent, runs it in a fresh top-level context and keeps
// its output as the final answer.
func (s *Session) RunAgent(ctx context.Context, agent Agent, inputs []Prompt) (Prompt, error) {
	if err := s.RegisterActiveAgent(agent); err != nil {
		return Prompt{}, NewAgentError(agent.Name(), "register", err)
	}

	rc := s.NewRunContext(ctx, agent, nil)

	out, err := rc.run(agent, inputs)
	if err != nil {
		return Prompt{}, err
	}

	s.mu.Lock()
	s.finalAnswer = out
	s.mu.Unlock()

	return out, nil
}

// TotalUsage returns the accumulated usage of every query issued so far.
func (s *Session) TotalUsage() Usage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage.snapshot()
}

// Queries returns a copy of the query log.
func (s *Session) Queries() []*QueryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queries)
}

// Query returns the query record with id.
func (s *Session) Query(id string) (*QueryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queryIndex[id]
	return q, ok
}

// Operations returns a copy of the operation log.
func (s *Session) Operations() []*OperationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.operations)
}

// ConversationPrompts returns the prompts of every non-handoff operation
// record in log order.
func (s *Session) ConversationPrompts() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Prompt, 0, len(s.operations))
	for _, r := range s.operations {
		if r.HasTag(TagHandoff) || r.Prompt.IsEmpty() {
			continue
		}
		out = append(out, r.Prompt)
	}

	return out
}

// Result snapshots the session for persistence.
func (s *Session) Result() Result {
	agents := s.ActiveAgents()

	s.mu.Lock()
	defer s.mu.Unlock()

	return Result{
		SessionID:    s.id,
		FinalAnswer:  s.finalAnswer,
		TotalUsage:   s.usage.snapshot(),
		ActiveAgents: agents,
		Operations:   slices.Clone(s.operations),
		Queries:      slices.Clone(s.queries),
	}
}
