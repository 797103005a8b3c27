package admission

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wayfare-app/wayfare/internal/application/authz"
	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/infrastructure/events"
	"github.com/wayfare-app/wayfare/internal/infrastructure/metrics"
	"github.com/wayfare-app/wayfare/internal/infrastructure/repository"
)

type fixture struct {
	engine   Engine
	groups   domain.GroupRepository
	requests domain.JoinRequestRepository
	users    repository.UserSeeder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	groups := repository.NewGroupRepository()
	requests := repository.NewJoinRequestRepository()
	users := repository.NewUserRepository()

	engine := NewEngine(
		groups,
		requests,
		users,
		authz.New(groups),
		events.NoopPublisher{},
		metrics.New(),
		zap.NewNop().Sugar(),
	)

	return &fixture{engine: engine, groups: groups, requests: requests, users: users}
}

func (f *fixture) seedGroup(t *testing.T, adminID string, maxMembers int) *domain.Group {
	t.Helper()

	group, err := domain.NewGroup(adminID, "Lisbon", "Porto", time.Now().Add(24*time.Hour), 0, 500, maxMembers, domain.TripAdventure, "")
	require.NoError(t, err)
	require.NoError(t, f.groups.Create(context.Background(), group))
	return group
}

func (f *fixture) seedUser(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, f.users.Put(context.Background(), &domain.User{ID: id, Name: name}))
}

func TestEngine_RequestJoin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	group := f.seedGroup(t, "admin-1", 4)

	request, err := f.engine.RequestJoin(ctx, group.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, domain.RequestPending, request.Status)
	require.Equal(t, group.ID, request.GroupID)
	require.Equal(t, "user-1", request.RequesterID)

	// Filing a request does not touch the member set.
	stored, err := f.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	require.False(t, stored.IsMember("user-1"))
}

func TestEngine_RequestJoin_Preconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	group := f.seedGroup(t, "admin-1", 2)

	_, err := f.engine.RequestJoin(ctx, "no-such-group", "user-1")
	require.ErrorIs(t, err, domain.ErrGroupNotFound)

	_, err = f.engine.RequestJoin(ctx, group.ID, "admin-1")
	require.ErrorIs(t, err, domain.ErrAlreadyMember)

	_, err = f.engine.RequestJoin(ctx, group.ID, "user-1")
	require.NoError(t, err)

	_, err = f.engine.RequestJoin(ctx, group.ID, "user-1")
	require.ErrorIs(t, err, domain.ErrDuplicateRequest)

	// Fill the last seat, then further requests bounce.
	_, err = f.groups.AddMember(ctx, group.ID, "user-9")
	require.NoError(t, err)

	_, err = f.engine.RequestJoin(ctx, group.ID, "user-2")
	require.ErrorIs(t, err, domain.ErrGroupFull)
}

func TestEngine_Approve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	group := f.seedGroup(t, "admin-1", 4)

	request, err := f.engine.RequestJoin(ctx, group.ID, "user-1")
	require.NoError(t, err)

	updated, err := f.engine.Approve(ctx, group.ID, request.ID, "admin-1")
	require.NoError(t, err)
	require.True(t, updated.IsMember("user-1"))

	stored, err := f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestApproved, stored.Status)

	// Approvals are terminal.
	_, err = f.engine.Approve(ctx, group.ID, request.ID, "admin-1")
	require.ErrorIs(t, err, domain.ErrRequestNotPending)
}

func TestEngine_Approve_AdminOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	group := f.seedGroup(t, "admin-1", 4)

	request, err := f.engine.RequestJoin(ctx, group.ID, "user-1")
	require.NoError(t, err)

	_, err = f.engine.Approve(ctx, group.ID, request.ID, "user-2")
	require.ErrorIs(t, err, domain.ErrNotAuthorized)

	// Not even the requester.
	_, err = f.engine.Approve(ctx, group.ID, request.ID, "user-1")
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestEngine_Approve_RequestFromAnotherGroupReadsAsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	groupA := f.seedGroup(t, "admin-1", 4)
	groupB := f.seedGroup(t, "admin-1", 4)

	request, err := f.engine.RequestJoin(ctx, groupB.ID, "user-1")
	require.NoError(t, err)

	_, err = f.engine.Approve(ctx, groupA.ID, request.ID, "admin-1")
	require.ErrorIs(t, err, domain.ErrRequestNotFound)

	// The request is untouched and still approvable in its own group.
	_, err = f.engine.Approve(ctx, groupB.ID, request.ID, "admin-1")
	require.NoError(t, err)
}

func TestEngine_Approve_LastSeatRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Two seats, one taken by the admin: exactly one approval can win.
	group := f.seedGroup(t, "admin-1", 2)

	requestA, err := f.engine.RequestJoin(ctx, group.ID, "user-a")
	require.NoError(t, err)
	requestB, err := f.engine.RequestJoin(ctx, group.ID, "user-b")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, requestID := range []string{requestA.ID, requestB.ID} {
		wg.Add(1)
		go func(i int, requestID string) {
			defer wg.Done()
			_, errs[i] = f.engine.Approve(ctx, group.ID, requestID, "admin-1")
		}(i, requestID)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, domain.ErrGroupFull)
		}
	}
	require.Equal(t, 1, won)

	stored, err := f.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, stored.Members, 2)

	// The loser's request must still be pending, not half-approved.
	a, err := f.requests.GetByID(ctx, requestA.ID)
	require.NoError(t, err)
	b, err := f.requests.GetByID(ctx, requestB.ID)
	require.NoError(t, err)

	statuses := []domain.RequestStatus{a.Status, b.Status}
	require.Contains(t, statuses, domain.RequestApproved)
	require.Contains(t, statuses, domain.RequestPending)
}

func TestEngine_Reject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	group := f.seedGroup(t, "admin-1", 4)

	request, err := f.engine.RequestJoin(ctx, group.ID, "user-1")
	require.NoError(t, err)

	require.NoError(t, f.engine.Reject(ctx, group.ID, request.ID, "admin-1"))

	stored, err := f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestRejected, stored.Status)

	updated, err := f.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	require.False(t, updated.IsMember("user-1"))

	// Rejecting a decided request fails loudly.
	err = f.engine.Reject(ctx, group.ID, request.ID, "admin-1")
	require.ErrorIs(t, err, domain.ErrRequestNotPending)

	// And the traveler may try again.
	_, err = f.engine.RequestJoin(ctx, group.ID, "user-1")
	require.NoError(t, err)
}

func TestEngine_ListPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	group := f.seedGroup(t, "admin-1", 8)

	f.seedUser(t, "user-1", "Alice")
	f.seedUser(t, "user-2", "Bob")

	for _, requester := range []string{"user-1", "user-2", "user-ghost"} {
		_, err := f.engine.RequestJoin(ctx, group.ID, requester)
		require.NoError(t, err)
	}

	_, err := f.engine.ListPending(ctx, group.ID, "user-1")
	require.ErrorIs(t, err, domain.ErrNotAuthorized)

	pending, err := f.engine.ListPending(ctx, group.ID, "admin-1")
	require.NoError(t, err)

	// The requester with no profile is skipped, the rest come back
	// oldest first with their profiles joined on.
	require.Len(t, pending, 2)
	require.Equal(t, "Alice", pending[0].User.Name)
	require.Equal(t, "Bob", pending[1].User.Name)
	for i := 1; i < len(pending); i++ {
		require.False(t, pending[i].Request.CreatedAt.Before(pending[i-1].Request.CreatedAt))
	}
}

func TestEngine_ApprovedMembersCanBeListedConcurrently(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	group := f.seedGroup(t, "admin-1", 32)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			requester := fmt.Sprintf("user-%d", i)
			request, err := f.engine.RequestJoin(ctx, group.ID, requester)
			if err != nil {
				return
			}
			_, _ = f.engine.Approve(ctx, group.ID, request.ID, "admin-1")
		}(i)
	}
	wg.Wait()

	stored, err := f.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, stored.Members, 11)
}
