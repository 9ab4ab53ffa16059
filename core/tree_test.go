package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreePath(t *testing.T) {
	root := TreePath{"s"}
	child := root.Extend("a")
	grandchild := child.Extend("b")

	assert.Equal(t, TreePath{"s"}, root, "Extend must not alias the receiver")
	assert.True(t, root.IsAncestorOf(grandchild))
	assert.False(t, grandchild.IsAncestorOf(root))
	assert.False(t, child.IsAncestorOf(child))
	assert.True(t, child.HasPrefix(child))
	assert.Equal(t, child, grandchild.Parent())
	assert.Equal(t, "b", grandchild.Last())
	assert.Equal(t, 3, grandchild.Depth())
	assert.Equal(t, "s/a/b", grandchild.String())
	assert.True(t, grandchild.Equal(ParseTreePath("s/a/b")))
	assert.Nil(t, ParseTreePath(""))
}

func TestTreeHelpers(t *testing.T) {
	a := &OperationRecord{ID: "1", Path: TreePath{"s", "1"}, Tags: []string{TagPlan}}
	b := &OperationRecord{ID: "2", Path: TreePath{"s", "x", "2"}}
	c := &OperationRecord{ID: "3", Path: TreePath{"s", "x", "y", "3"}, Tags: []string{TagPlan}}
	records := []*OperationRecord{a, b, c}

	assert.Equal(t, []*OperationRecord{b, c}, Subtree(records, TreePath{"s", "x"}))
	assert.Equal(t, []*OperationRecord{a}, Children(records, TreePath{"s"}))
	assert.Same(t, c, LastTagged(records, TagPlan))
	assert.Nil(t, LastTagged(records, TagAnswer))

	prev, last, err := SplitLast(records)
	require.NoError(t, err)
	assert.Same(t, c, last)
	assert.Len(t, prev, 2)

	_, _, err = SplitLast(nil)
	assert.ErrorIs(t, err, ErrEmptyHistory)
}

func TestDedupPrompts(t *testing.T) {
	in := []Prompt{UserText("a"), TextPrompt(RoleModel, "a"), UserText("a"), UserText("b")}
	assert.Equal(t, []Prompt{UserText("a"), TextPrompt(RoleModel, "a"), UserText("b")}, DedupPrompts(in))
}

func TestHistoryPrompts(t *testing.T) {
	msgs := []*Message{
		{Question: "q1", Answer: TextPrompt(RoleUser, "a1"), Usage: Usage{TotalTokens: 3}},
		{Question: "q2", Usage: Usage{TotalTokens: 4}},
	}

	assert.Equal(t, []Prompt{UserText("q1"), TextPrompt(RoleModel, "a1"), UserText("q2")}, HistoryPrompts(msgs))
	assert.Equal(t, 7, ChatUsage(msgs).TotalTokens)
}
