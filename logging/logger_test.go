package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel(" error "))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestAgentLoomLogger_LevelAndContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf}).
		WithComponent("session").
		WithSession("s1", "s1/abc").
		With("chat", "c1")

	l.Debug("hidden")
	l.Info("visible", "agent", "ManagerAgent", "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)

	entry := lines[0]
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, "s1/abc", entry["tree_path"])
	assert.Equal(t, "c1", entry["chat"])
	assert.Equal(t, "ManagerAgent", entry["agent"])
	assert.Equal(t, "dangling", entry["!BADKEY"])
}

func TestAgentLoomLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&LoggerConfig{Level: LogLevelDebug, Output: &buf})
	_ = parent.With("k", "v")

	parent.Info("plain")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "k")
}

func TestAgentLoomLogger_LogLLMCall(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf})

	l.LogLLMCall("gemini", 10, 5, time.Millisecond, true, nil)
	l.LogAgentRun("ManagerAgent", time.Millisecond, false, assert.AnError)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "LLM call completed", lines[0]["msg"])
	assert.EqualValues(t, 10, lines[0]["input_tokens"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, assert.AnError.Error(), lines[1]["error"])
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLogger(&buf, LogLevelWarn, false)

	l.Info("dropped")
	l.Warn("kept", "agent", "CriticAgent")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["message"])
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "CriticAgent", lines[0]["agent"])
}

func TestZapLogger(t *testing.T) {
	l, err := NewZapLogger(LogLevelError)
	require.NoError(t, err)

	assert.NotPanics(t, func() { l.Error("zap works", "key", "value") })
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	assert.NotPanics(t, func() { l.Info("nothing") })
}
