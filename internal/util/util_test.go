package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	assert.Equal(t, []string{"a"}, schema["required"])
	assert.Equal(t, "Field A", props["a"].(map[string]any)["description"])
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		"required": []string{"x"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"x": 5}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"x": 5.0}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)

	err = ValidateParameters(map[string]any{"x": "not-int"}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)
	assert.Equal(t, "not-int", vErr.Value)

	assert.NoError(t, ValidateParameters(map[string]any{"anything": true}, nil))
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("no markers", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers", out)

	out, err = RenderTemplate(`{{range .}}- {{upper .}}{{"\n"}}{{end}}`, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "- A\n- B\n", out)

	out, err = RenderTemplate(`{{truncate 3 .Text}}|{{default "n/a" .Missing}}`, map[string]any{"Text": "abcdef"})
	require.NoError(t, err)
	assert.Equal(t, "abc|n/a", out)

	_, err = RenderTemplate("{{", nil)
	assert.Error(t, err)
}

func TestExtractJSONObject(t *testing.T) {
	raw, ok := ExtractJSONObject(`Sure: {"agent":"JiraAgent","feedback":"check WFORD"} thanks`)
	require.True(t, ok)
	assert.Equal(t, `{"agent":"JiraAgent","feedback":"check WFORD"}`, raw)

	_, ok = ExtractJSONObject("no json here")
	assert.False(t, ok)

	_, ok = ExtractJSONObject("} backwards {")
	assert.False(t, ok)
}

func TestChunkAndTakeRight(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Nil(t, Chunk([]int{}, 5))
	assert.Equal(t, [][]int{{1, 2, 3}}, Chunk([]int{1, 2, 3}, 0))

	assert.Equal(t, []int{3}, TakeRight([]int{1, 2, 3}, 1))
	assert.Equal(t, []int{1, 2, 3}, TakeRight([]int{1, 2, 3}, 5))
	assert.Nil(t, TakeRight([]int{1, 2, 3}, 0))
}
