package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloom/core"
	"github.com/hupe1980/agentloom/internal/testutil"
	"github.com/hupe1980/agentloom/model"
	"github.com/hupe1980/agentloom/session"
)

func answering() *testutil.StubAgent {
	return testutil.NewStubAgent("Answer", func(rc *core.RunContext, _ []core.Prompt) (core.Prompt, error) {
		q, err := rc.Query(rc.ConversationPrompts())
		if err != nil {
			return core.Prompt{}, err
		}
		if _, err := rc.RecordOperation(q.Output, "answer", core.WithQueryIDs(q.ID)); err != nil {
			return core.Prompt{}, err
		}
		return q.Output, nil
	})
}

func TestRunner_AskPersistsMessage(t *testing.T) {
	gw := model.NewMock("mock")
	gw.Enqueue(&core.GenerateResponse{
		Prompt: core.TextPrompt(core.RoleModel, "42"),
		Usage:  &core.Usage{InputTokens: 5, OutputTokens: 1, TotalTokens: 6},
	})

	store := session.NewInMemoryStore()
	r := New(answering(), gw, func(o *Options) { o.Store = store })

	msg, err := r.Ask(context.Background(), "chat-1", "meaning of life?")
	require.NoError(t, err)

	assert.Equal(t, "chat-1", msg.ChatID)
	assert.Equal(t, "meaning of life?", msg.Question)
	assert.Equal(t, "42", msg.Answer.Text())
	assert.Equal(t, 6, msg.Usage.TotalTokens)
	require.Len(t, msg.Queries, 1)
	require.Len(t, msg.Operations, 2)
	assert.True(t, msg.Operations[0].HasTag(core.TagUserInput))
	assert.Equal(t, DefaultQuestionPrefix+"meaning of life?", msg.Operations[0].Prompt.Text())
	assert.Equal(t, "Answer", msg.ActiveAgents[0].Name)

	stored, err := store.Get(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "42", stored.Answer.Text())
	assert.Empty(t, r.ActiveRuns())
}

func TestRunner_PriorMessagesBecomeHistory(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueText("first", "second")

	r := New(answering(), gw, func(o *Options) { o.QuestionPrefix = "" })

	_, err := r.Ask(context.Background(), "chat", "one?")
	require.NoError(t, err)
	_, err = r.Ask(context.Background(), "chat", "two?")
	require.NoError(t, err)

	prompts := gw.Requests()[1].Prompts
	require.Len(t, prompts, 3)
	assert.Equal(t, "one?", prompts[0].Text())
	assert.Equal(t, core.RoleModel, prompts[1].Role)
	assert.Equal(t, "first", prompts[1].Text())
	assert.Equal(t, "two?", prompts[2].Text())

	msgs, err := r.Store().ListByChat(context.Background(), "chat")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestRunner_FailedRunIsNotPersisted(t *testing.T) {
	gw := model.NewMock("mock")
	gw.EnqueueError(errors.New("provider down"))

	r := New(answering(), gw)

	_, err := r.Ask(context.Background(), "chat", "q")
	require.Error(t, err)
	assert.Equal(t, "Answer", core.FailingAgent(err))

	msgs, err := r.Store().ListByChat(context.Background(), "chat")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRunner_MaxModelCalls(t *testing.T) {
	gw := model.NewMock("mock")

	twice := testutil.NewStubAgent("Twice", func(rc *core.RunContext, inputs []core.Prompt) (core.Prompt, error) {
		for i := 0; i < 2; i++ {
			if _, err := rc.Query(rc.ConversationPrompts()); err != nil {
				return core.Prompt{}, err
			}
		}
		return core.TextPrompt(core.RoleModel, "done"), nil
	})

	r := New(twice, gw, func(o *Options) { o.MaxModelCalls = 1 })
	_, err := r.Ask(context.Background(), "chat", "q")
	require.ErrorIs(t, err, core.ErrCallLimit)
	assert.Equal(t, 1, gw.Calls())
}

func TestRunner_CancelUnknown(t *testing.T) {
	r := New(answering(), model.NewMock("mock"))
	require.Error(t, r.Cancel("nope"))
}

func TestRunner_CancelInFlight(t *testing.T) {
	var r *Runner

	agent := testutil.NewStubAgent("Blocking", func(rc *core.RunContext, _ []core.Prompt) (core.Prompt, error) {
		require.NoError(t, r.Cancel(rc.Session().ID()))
		return core.Prompt{}, rc.Context.Err()
	})

	r = New(agent, model.NewMock("mock"))

	_, err := r.Ask(context.Background(), "chat", "q")
	require.ErrorIs(t, err, context.Canceled)
}
