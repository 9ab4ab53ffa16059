package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloom/core"
)

var _ core.SessionStore = (*Store)(nil)

func setupStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "agentloom.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func fullMessage(id, chatID string, at time.Time) *core.Message {
	query := &core.QueryRecord{
		ID:        "q-" + id,
		Path:      core.TreePath{id, "ctx", "q-" + id},
		AgentName: "ManagerAgent",
		Inputs:    []core.Prompt{core.UserText("question " + id)},
		Output: core.Prompt{Role: core.RoleModel, Parts: []core.Part{
			core.TextPart{Text: "calling"},
			core.FunctionCallPart{FunctionCall: core.FunctionCall{Name: "Echo", Args: map[string]any{"text": "hi"}}},
		}},
		Usage:       core.Usage{InputTokens: 10, OutputTokens: 4, TotalTokens: 14},
		RequestedAt: at,
		RespondedAt: at.Add(time.Second),
	}

	return &core.Message{
		ID:       id,
		ChatID:   chatID,
		Question: "question " + id,
		Answer:   core.TextPrompt(core.RoleModel, "answer "+id),
		Usage:    query.Usage,
		ActiveAgents: []core.AgentInfo{
			{Name: "ManagerAgent", Description: "routes", ShortDescription: "routes"},
		},
		Operations: []*core.OperationRecord{{
			ID:        "op-" + id,
			Path:      core.TreePath{id, "ctx", "op-" + id},
			Tags:      []string{core.TagRouting},
			AgentName: "ManagerAgent",
			Prompt:    query.Output,
			QueryIDs:  []string{query.ID},
			Usage:     query.Usage,
		}},
		Queries:   []*core.QueryRecord{query},
		CreatedAt: at,
	}
}

func TestStore_SaveGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	at := time.Now().Truncate(time.Millisecond)
	msg := fullMessage("m1", "chat", at)
	require.NoError(t, s.Save(ctx, msg))

	got, err := s.Get(ctx, "m1")
	require.NoError(t, err)

	assert.Equal(t, "chat", got.ChatID)
	assert.Equal(t, "answer m1", got.Answer.Text())
	assert.Equal(t, 14, got.Usage.TotalTokens)
	assert.True(t, at.Equal(got.CreatedAt))

	require.Len(t, got.Operations, 1)
	op := got.Operations[0]
	assert.Equal(t, core.TreePath{"m1", "ctx", "op-m1"}, op.Path)
	assert.Equal(t, []string{"q-m1"}, op.QueryIDs)

	calls := op.Prompt.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Echo", calls[0].Name)
	assert.Equal(t, "hi", calls[0].Args["text"])

	require.Len(t, got.Queries, 1)
	assert.Equal(t, time.Second, got.Queries[0].Duration())
	assert.Equal(t, "ManagerAgent", got.ActiveAgents[0].Name)
}

func TestStore_GetMissing(t *testing.T) {
	_, err := setupStore(t).Get(context.Background(), "missing")
	require.ErrorIs(t, err, core.ErrMessageNotFound)
}

func TestStore_ListByChat(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	now := time.Now()

	require.NoError(t, s.Save(ctx, fullMessage("m2", "chat", now.Add(time.Minute))))
	require.NoError(t, s.Save(ctx, fullMessage("m1", "chat", now)))
	require.NoError(t, s.Save(ctx, fullMessage("o1", "other", now)))

	msgs, err := s.ListByChat(ctx, "chat")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
	assert.Equal(t, 28, core.ChatUsage(msgs).TotalTokens)

	history := core.HistoryPrompts(msgs)
	require.Len(t, history, 4)
	assert.Equal(t, "question m1", history[0].Text())
	assert.Equal(t, core.RoleModel, history[1].Role)
}

func TestStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	msg := fullMessage("m1", "chat", time.Now())
	require.NoError(t, s.Save(ctx, msg))

	msg.Answer = core.TextPrompt(core.RoleModel, "better answer")
	msg.Operations = nil
	require.NoError(t, s.Save(ctx, msg))

	got, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "better answer", got.Answer.Text())
	assert.Empty(t, got.Operations)

	msgs, err := s.ListByChat(ctx, "chat")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestNew_SharedDB(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "shared.db"))
	require.NoError(t, err)
	defer db.Close()

	s, err := New(db)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, db.Ping())

	_, err = New(nil)
	require.Error(t, err)
}
