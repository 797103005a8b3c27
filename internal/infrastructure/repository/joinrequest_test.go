package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/wayfare/internal/domain"
)

func newPendingRequest(t *testing.T, groupID, requesterID string) *domain.JoinRequest {
	t.Helper()
	request, err := domain.NewJoinRequest(groupID, requesterID)
	require.NoError(t, err)
	return request
}

func TestJoinRequestRepository_CreatePending_RejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewJoinRequestRepository()

	first := newPendingRequest(t, "group-1", "user-1")
	require.NoError(t, repo.CreatePending(ctx, first))

	second := newPendingRequest(t, "group-1", "user-1")
	require.ErrorIs(t, repo.CreatePending(ctx, second), domain.ErrDuplicateRequest)

	// Another group or another requester is a different pair.
	require.NoError(t, repo.CreatePending(ctx, newPendingRequest(t, "group-2", "user-1")))
	require.NoError(t, repo.CreatePending(ctx, newPendingRequest(t, "group-1", "user-2")))
}

func TestJoinRequestRepository_Transition_IsTerminal(t *testing.T) {
	ctx := context.Background()
	repo := NewJoinRequestRepository()

	request := newPendingRequest(t, "group-1", "user-1")
	require.NoError(t, repo.CreatePending(ctx, request))

	approved, err := repo.Transition(ctx, request.ID, domain.RequestApproved)
	require.NoError(t, err)
	require.Equal(t, domain.RequestApproved, approved.Status)

	_, err = repo.Transition(ctx, request.ID, domain.RequestRejected)
	require.ErrorIs(t, err, domain.ErrRequestNotPending)

	_, err = repo.Transition(ctx, "no-such-request", domain.RequestApproved)
	require.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestJoinRequestRepository_RerequestAfterRejection(t *testing.T) {
	ctx := context.Background()
	repo := NewJoinRequestRepository()

	first := newPendingRequest(t, "group-1", "user-1")
	require.NoError(t, repo.CreatePending(ctx, first))

	_, err := repo.Transition(ctx, first.ID, domain.RequestRejected)
	require.NoError(t, err)

	// The rejection frees the (group, requester) pair.
	second := newPendingRequest(t, "group-1", "user-1")
	require.NoError(t, repo.CreatePending(ctx, second))

	// The old request keeps its terminal state.
	old, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestRejected, old.Status)
}

func TestJoinRequestRepository_ListPending_OldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewJoinRequestRepository()

	base := time.Now().UTC()
	for i, requester := range []string{"user-3", "user-1", "user-2"} {
		request := newPendingRequest(t, "group-1", requester)
		request.CreatedAt = base.Add(time.Duration(3-i) * time.Minute)
		require.NoError(t, repo.CreatePending(ctx, request))
	}

	decided := newPendingRequest(t, "group-1", "user-4")
	require.NoError(t, repo.CreatePending(ctx, decided))
	_, err := repo.Transition(ctx, decided.ID, domain.RequestApproved)
	require.NoError(t, err)

	pending, err := repo.ListPending(ctx, "group-1")
	require.NoError(t, err)
	require.Len(t, pending, 3)

	for i := 1; i < len(pending); i++ {
		require.False(t, pending[i].CreatedAt.Before(pending[i-1].CreatedAt))
	}
	for _, request := range pending {
		require.Equal(t, domain.RequestPending, request.Status)
	}
}
