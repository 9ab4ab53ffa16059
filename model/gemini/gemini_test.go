package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hupe1980/agentloom/core"
)

func TestBuildContents(t *testing.T) {
	contents, err := buildContents([]core.Prompt{
		core.UserText("hello"),
		{Role: core.RoleModel, Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{Name: "Echo", Args: map[string]any{"text": "x"}}}}},
		{Role: core.RoleFunction, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{Name: "Echo", Response: "x"}}}},
		core.EmptyPrompt(core.RoleUser),
	})
	require.NoError(t, err)
	require.Len(t, contents, 3)

	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	assert.Equal(t, "Echo", contents[1].Parts[0].FunctionCall.Name)
	assert.Equal(t, genai.RoleUser, contents[2].Role)
	assert.Equal(t, map[string]any{"result": "x"}, contents[2].Parts[0].FunctionResponse.Response)
}

func TestFromContent(t *testing.T) {
	p := fromContent(&genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{
		{Text: "thinking", Thought: true},
		{Text: "answer"},
		{FunctionCall: &genai.FunctionCall{Name: "Echo", Args: map[string]any{"a": 1.0}}},
	}})

	assert.Equal(t, "answer", p.Text())
	require.Len(t, p.FunctionCalls(), 1)
	assert.Equal(t, "Echo", p.FunctionCalls()[0].Name)
}

func TestToSchema(t *testing.T) {
	s, err := toSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key": map[string]any{"type": "string", "description": "ticket key"},
		},
		"required": []any{"key"},
	})
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, genai.TypeString, s.Properties["key"].Type)
	assert.Equal(t, []string{"key"}, s.Required)

	empty, err := toSchema(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestBuildConfig(t *testing.T) {
	g := &Gateway{opts: Options{Model: DefaultModel}}
	maxTokens := 1000

	cfg, err := g.buildConfig(core.GenerateRequest{
		SystemInstruction: "sys",
		Config: &core.GenerationConfig{
			MaxOutputTokens: &maxTokens,
			SafetySettings:  []core.SafetySetting{{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"}},
		},
		Tools: []core.ToolDeclaration{{Name: "Echo", Parameters: map[string]any{"type": "object"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1000), cfg.MaxOutputTokens)
	require.Len(t, cfg.SafetySettings, 1)
	assert.Equal(t, genai.HarmBlockThreshold("BLOCK_NONE"), cfg.SafetySettings[0].Threshold)
	require.Len(t, cfg.Tools, 1)
	assert.Equal(t, "Echo", cfg.Tools[0].FunctionDeclarations[0].Name)
	assert.Equal(t, "sys", cfg.SystemInstruction.Parts[0].Text)
}
