package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewChatMessage_TrimsContent(t *testing.T) {
	msg, err := NewChatMessage("group-1", "user-1", "Alice", "  hello  ")
	require.NoError(t, err)

	require.Equal(t, "hello", msg.Content)
	require.Equal(t, "group-1", msg.GroupID)
	require.NotEmpty(t, msg.ID)
	require.False(t, msg.CreatedAt.IsZero())
}

func TestNewChatMessage_RejectsEmptyContent(t *testing.T) {
	_, err := NewChatMessage("group-1", "user-1", "Alice", "   \t\n ")
	require.ErrorIs(t, err, ErrEmptyMessage)
}

func TestNewChatMessage_RejectsOversizedContent(t *testing.T) {
	_, err := NewChatMessage("group-1", "user-1", "Alice", strings.Repeat("a", MaxMessageLength+1))
	require.ErrorIs(t, err, ErrMessageTooLong)

	_, err = NewChatMessage("group-1", "user-1", "Alice", strings.Repeat("a", MaxMessageLength))
	require.NoError(t, err)
}
