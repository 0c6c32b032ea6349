package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationClone(t *testing.T) {
	now := time.Now()
	conv := &Conversation{
		ID:      "c1",
		Created: now,
		Updated: now,
		Messages: []Message{
			{Role: RoleUser, Content: "hi", Timestamp: now},
			{Role: RoleAssistant, Content: "", Timestamp: now, Metadata: map[string]any{
				MetaToolCalls: []ToolCall{{Name: "get_weather"}},
			}},
		},
	}

	clone := conv.Clone()
	require.Equal(t, conv.ID, clone.ID)
	require.Len(t, clone.Messages, 2)

	// Mutating the clone must not leak back.
	clone.Messages[0].Content = "changed"
	clone.Messages[1].Metadata[MetaToolName] = "injected"
	clone.Messages = append(clone.Messages, Message{Role: RoleUser})

	assert.Equal(t, "hi", conv.Messages[0].Content)
	assert.NotContains(t, conv.Messages[1].Metadata, MetaToolName)
	assert.Len(t, conv.Messages, 2)
}

func TestCloneEmptyConversation(t *testing.T) {
	conv := &Conversation{ID: "empty"}
	clone := conv.Clone()
	assert.Equal(t, "empty", clone.ID)
	assert.Empty(t, clone.Messages)
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAssistant, RoleSystem, RoleTool} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Role("moderator").Valid())
	assert.False(t, Role("").Valid())
}

func TestToolResultFailed(t *testing.T) {
	ok := ToolResult{ToolName: "calculate", Result: 4.0}
	assert.False(t, ok.Failed())

	failed := ToolResult{ToolName: "calculate", Error: "bad expression"}
	assert.True(t, failed.Failed())
}
