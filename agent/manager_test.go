package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/internal/testutil"
	"github.com/hupe1980/agentloom/model"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Route
		wantErr bool
	}{
		{name: "plain", text: `{"agent": "A", "feedback": "go"}`, want: Route{Agent: "A", Feedback: "go"}},
		{name: "surrounded", text: "Sure: {\"agent\": \"JiraAgent\", \"feedback\": \"\"} thanks", want: Route{Agent: "JiraAgent"}},
		{name: "fenced", text: "```json\n{\"agent\": \"B\"}\n```", want: Route{Agent: "B"}},
		{name: "no braces", text: "I think JiraAgent", wantErr: true},
		{name: "broken json", text: `{"agent": }`, wantErr: true},
		{name: "missing agent", text: `{"feedback": "x"}`, wantErr: true},
		{name: "non string agent", text: `{"agent": 42}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoute(tt.text)
			if tt.wantErr {
				require.ErrorIs(t, err, core.ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_RoutesToNamedAgent(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueText(`Sure: {"agent": "JiraAgent", "feedback": "look at ABC-1"}`)

	var received []core.Prompt
	jira := testutil.NewStubAgent("JiraAgent", func(_ *core.RunContext, inputs []core.Prompt) (core.Prompt, error) {
		received = inputs
		return core.TextPrompt(core.RoleModel, "ABC-1 is done"), nil
	})
	other := testutil.Reply("FactualKnowledgeAgent", "wrong")

	m := NewManager([]core.Agent{jira, other})

	sess := newSession(gw)
	sess.AddUserInput(core.UserText("status of ABC-1?"))

	out, err := run(t, sess, m)
	require.NoError(t, err)
	assert.Equal(t, "ABC-1 is done", out.Text())

	require.Equal(t, 1, gw.Calls())
	req := gw.Requests()[0]
	assert.Contains(t, req.SystemInstruction, "- JiraAgent: JiraAgent agent")
	assert.Contains(t, req.SystemInstruction, "- FactualKnowledgeAgent:")
	assert.Equal(t, "status of ABC-1?", req.Prompts[len(req.Prompts)-1].Text())

	require.Len(t, received, 2)
	assert.Equal(t, "status of ABC-1?", received[0].Text())
	assert.Equal(t, "Feedback from ManagerAgent: look at ABC-1", received[1].Text())

	recs := sess.Operations()
	require.Len(t, tagged(recs, core.TagRouting), 1)
	handoffs := tagged(recs, core.TagHandoff)
	require.Len(t, handoffs, 1)
	assert.Contains(t, handoffs[0].Description, "request to JiraAgent: look at ABC-1")

	names := []string{}
	for _, a := range sess.ActiveAgents() {
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "JiraAgent")
	assert.NotContains(t, names, "FactualKnowledgeAgent")
	assert.NotContains(t, names, SummaryAgentName)
}

func TestManager_UnknownAgent(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueText(`{"agent": "WeatherAgent", "feedback": ""}`)

	m := NewManager([]core.Agent{testutil.Reply("JiraAgent", "x")})

	sess := newSession(gw)
	sess.AddUserInput(core.UserText("weather?"))

	_, err := run(t, sess, m)
	require.ErrorIs(t, err, core.ErrNoSuitableAgent)
	assert.Equal(t, ManagerAgentName, core.FailingAgent(err))
	assert.Empty(t, tagged(sess.Operations(), core.TagHandoff))
}

func TestManager_InvalidEnvelope(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueText("I would ask JiraAgent")

	sess := newSession(gw)
	sess.AddUserInput(core.UserText("hi"))

	_, err := run(t, sess, NewManager([]core.Agent{testutil.Reply("JiraAgent", "x")}))
	require.ErrorIs(t, err, core.ErrInvalidFormat)
}

func TestManager_EmptyHistoryWithoutInputs(t *testing.T) {
	gw := model.NewMock("mock")

	_, err := run(t, newSession(gw), NewManager(nil))
	require.ErrorIs(t, err, core.ErrEmptyHistory)
	assert.Equal(t, 0, gw.Calls())
}

func TestManager_SummarizesPreviousRecordsAndContinues(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueText("user asked for status", "planner produced a plan", `{"agent": "JiraAgent"}`)

	m := NewManager([]core.Agent{testutil.Reply("JiraAgent", "done")})

	sess := newSession(gw)
	sess.AddUserInput(core.UserText("status?"))
	_, err := sess.RecordOperation(sess.RootPath(), "PlannerAgent", core.TextPrompt(core.RoleModel, "1. fetch"), "plan", core.WithTags(core.TagPlan))
	require.NoError(t, err)

	out, err := run(t, sess, m)
	require.NoError(t, err)
	assert.Equal(t, "done", out.Text())
	require.Equal(t, 3, gw.Calls())

	prompts := gw.Requests()[2].Prompts
	require.Len(t, prompts, 3)
	assert.Equal(t, "Summary of user (user input):\nuser asked for status", prompts[0].Text())
	assert.Equal(t, "Summary of PlannerAgent (plan):\nplanner produced a plan", prompts[1].Text())
	assert.Equal(t, continuePrompt, prompts[2].Text())

	recs := sess.Operations()
	assert.Equal(t, "user asked for status", recs[0].Summary)
	assert.Equal(t, "planner produced a plan", recs[1].Summary)
}

func TestManager_SharesSummaryCandidate(t *testing.T) {
	summary := NewSummary()
	m := NewManager([]core.Agent{summary})
	assert.Same(t, summary, m.summarizer)

	custom := testutil.Reply("Condenser", "x")
	m = NewManager(nil, func(o *ManagerOptions) { o.Summarizer = custom })
	assert.Same(t, custom, m.summarizer)
}

func TestAgentCatalogue(t *testing.T) {
	out := AgentCatalogue([]core.Agent{testutil.Reply("A", ""), testutil.Reply("B", "")})
	assert.Equal(t, "Available agents:\n- A: A agent\n- B: B agent\n", out)
}
