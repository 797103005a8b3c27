package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/wayfare/internal/domain"
)

func TestMessageRepository_GetRecent_NewestAscending(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(100)

	for i := 0; i < 10; i++ {
		msg, err := domain.NewChatMessage("group-1", "user-1", "Alice", fmt.Sprintf("message %d", i))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, msg))
	}

	recent, err := repo.GetRecent(ctx, "group-1", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	require.Equal(t, "message 7", recent[0].Content)
	require.Equal(t, "message 8", recent[1].Content)
	require.Equal(t, "message 9", recent[2].Content)
}

func TestMessageRepository_GetRecent_EmptyGroup(t *testing.T) {
	repo := NewMessageRepository(100)

	recent, err := repo.GetRecent(context.Background(), "group-1", 50)
	require.NoError(t, err)
	require.Empty(t, recent)
}

func TestMessageRepository_EvictsOldestBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(5)

	for i := 0; i < 8; i++ {
		msg, err := domain.NewChatMessage("group-1", "user-1", "Alice", fmt.Sprintf("message %d", i))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, msg))
	}

	all, err := repo.GetRecent(ctx, "group-1", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.Equal(t, "message 3", all[0].Content)
	require.Equal(t, "message 7", all[4].Content)
}

func TestMessageRepository_GroupsAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(100)

	msg, err := domain.NewChatMessage("group-1", "user-1", "Alice", "only here")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, msg))

	other, err := repo.GetRecent(ctx, "group-2", 10)
	require.NoError(t, err)
	require.Empty(t, other)
}
