package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/model"
	"github.com/hupe1980/agentloom/tool"
)

// MockAgent is a testify mock implementing core.Agent.
type MockAgent struct {
	mock.Mock

	name string
}

func newMockAgent(name string) *MockAgent { return &MockAgent{name: name} }

func (m *MockAgent) Name() string                             { return m.name }
func (m *MockAgent) Description() string                      { return m.name + " description" }
func (m *MockAgent) ShortDescription() string                 { return m.name }
func (m *MockAgent) Tools() []core.Tool                       { return nil }
func (m *MockAgent) SystemInstruction() string                { return "" }
func (m *MockAgent) OutputTags() []string                     { return nil }
func (m *MockAgent) GenerationConfig() *core.GenerationConfig { return nil }

func (m *MockAgent) Run(rc *core.RunContext, inputs []core.Prompt) (core.Prompt, error) {
	args := m.Called(inputs)
	return args.Get(0).(core.Prompt), args.Error(1)
}

func newSession(gw core.Gateway) *core.Session { return core.NewSession(gw) }

func run(t *testing.T, sess *core.Session, a core.Agent, inputs ...core.Prompt) (core.Prompt, error) {
	t.Helper()
	return sess.RunAgent(context.Background(), a, inputs)
}

func descriptions(records []*core.OperationRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Description)
	}
	return out
}

func tagged(records []*core.OperationRecord, tag string) []*core.OperationRecord {
	var out []*core.OperationRecord
	for _, r := range records {
		if r.HasTag(tag) {
			out = append(out, r)
		}
	}
	return out
}

func TestBaseAgent_ShortDescriptionDefaultsToDescription(t *testing.T) {
	b := NewBaseAgent(Options{Name: "a", Description: "does things"})
	assert.Equal(t, "does things", b.ShortDescription())

	b = NewBaseAgent(Options{Name: "a", Description: "does things", ShortDescription: "short"})
	assert.Equal(t, "short", b.ShortDescription())
}

func TestSimple_NoInputSkipsQuery(t *testing.T) {
	gw := model.NewMock("mock")
	s := NewSimple("plain")

	out, err := run(t, newSession(gw), s)
	require.NoError(t, err)

	assert.True(t, out.IsEmpty())
	assert.Equal(t, core.RoleModel, out.Role)
	assert.Equal(t, 0, gw.Calls())
}

func TestSimple_QueriesWithTriggerAndRecords(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueText("hello back")

	trigger := core.UserText("say hello")
	s := NewSimple("greeter", func(o *SimpleOptions) {
		o.SystemInstruction = "be nice"
		o.OutputTags = []string{"greeting"}
		o.TriggerPrompt = &trigger
	})

	sess := newSession(gw)
	out, err := run(t, sess, s, core.UserText("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hello back", out.Text())

	reqs := gw.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "be nice", reqs[0].SystemInstruction)
	require.Len(t, reqs[0].Prompts, 2)
	assert.Equal(t, "say hello", reqs[0].Prompts[1].Text())

	recs := sess.Operations()
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"greeting"}, recs[0].Tags)
	require.Len(t, recs[0].QueryIDs, 1)
}

func TestNaturalResponse_UsesConversation(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueText("Here you go!")

	sess := newSession(gw)
	sess.AddUserInput(core.UserText("what is up?"))

	out, err := run(t, sess, NewNaturalResponse(), core.TextPrompt(core.RoleModel, "raw answer"))
	require.NoError(t, err)
	assert.Equal(t, "Here you go!", out.Text())

	prompts := gw.Requests()[0].Prompts
	require.Len(t, prompts, 3)
	assert.Equal(t, "what is up?", prompts[0].Text())
	assert.Equal(t, "raw answer", prompts[1].Text())
	assert.Equal(t, naturalResponseTrigger, prompts[2].Text())

	assert.Len(t, tagged(sess.Operations(), core.TagAnswer), 1)
}

func TestFactualKnowledge_QuestionFromConversation(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueText("Paris")

	sess := newSession(gw)
	sess.AddUserInput(core.UserText("Capital of France?"))

	out, err := run(t, sess, NewFactualKnowledge())
	require.NoError(t, err)
	assert.Equal(t, "Paris", out.Text())

	prompts := gw.Requests()[0].Prompts
	last := prompts[len(prompts)-1]
	require.Len(t, last.Parts, 2)
	assert.Equal(t, "Capital of France?", last.Parts[1].(core.TextPart).Text)
	assert.Empty(t, gw.Requests()[0].Tools)
}

func TestFactualKnowledge_NoQuestion(t *testing.T) {
	gw := model.NewMock("mock")

	_, err := run(t, newSession(gw), NewFactualKnowledge())
	require.NoError(t, err)

	prompts := gw.Requests()[0].Prompts
	assert.Contains(t, prompts[len(prompts)-1].Text(), "No question provided.")
}

func TestFactualKnowledge_QuestionFromInputs(t *testing.T) {
	gw := model.NewMock("mock")

	_, err := run(t, newSession(gw), NewFactualKnowledge(), core.UserText("How tall is Everest?"))
	require.NoError(t, err)

	prompts := gw.Requests()[0].Prompts
	require.Len(t, prompts, 2)
	assert.Equal(t, "How tall is Everest?", prompts[0].Text())
	assert.Equal(t, "How tall is Everest?", prompts[1].Parts[1].(core.TextPart).Text)
}

func TestSummary_EmptyConversationSkipsQuery(t *testing.T) {
	gw := model.NewMock("mock")

	out, err := run(t, newSession(gw), NewSummary())
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
	assert.Equal(t, 0, gw.Calls())
}

func TestSummary_InputsAreNotMutated(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueText("short")

	inputs := make([]core.Prompt, 1, 4)
	inputs[0] = core.UserText("long text")

	_, err := run(t, newSession(gw), NewSummary(), inputs...)
	require.NoError(t, err)

	prompts := gw.Requests()[0].Prompts
	require.Len(t, prompts, 2)
	assert.Equal(t, summaryTrigger, prompts[1].Text())
	assert.Equal(t, "long text", inputs[0].Text())
}

func TestPlanner_ListsToolsWithoutDeclaringThem(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueText("1. call Echo")

	sess := newSession(gw)
	sess.AddUserInput(core.UserText("echo hi"))

	_, err := run(t, sess, NewPlanner([]core.Tool{tool.NewEcho()}))
	require.NoError(t, err)

	req := gw.Requests()[0]
	assert.Empty(t, req.Tools)

	trigger := req.Prompts[len(req.Prompts)-1]
	assert.Contains(t, trigger.Text(), "Tool Name: Echo; Description:")

	plan := sess.Operations()[1]
	assert.True(t, plan.HasTag(core.TagPlan))
	assert.Equal(t, "1. call Echo", plan.Prompt.Text())
}

func TestToolCatalogue_Empty(t *testing.T) {
	assert.Equal(t, "Available tools:\n", ToolCatalogue(nil))
}
