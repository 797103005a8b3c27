package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/wayfare/internal/domain"
)

func newTestGroup(t *testing.T, maxMembers int) *domain.Group {
	t.Helper()
	group, err := domain.NewGroup("admin-1", "Lisbon", "Porto", time.Now().Add(24*time.Hour), 0, 500, maxMembers, domain.TripAdventure, "")
	require.NoError(t, err)
	return group
}

func TestGroupRepository_AddMember(t *testing.T) {
	ctx := context.Background()
	repo := NewGroupRepository()

	group := newTestGroup(t, 3)
	require.NoError(t, repo.Create(ctx, group))

	updated, err := repo.AddMember(ctx, group.ID, "user-2")
	require.NoError(t, err)
	require.True(t, updated.IsMember("user-2"))

	_, err = repo.AddMember(ctx, group.ID, "user-2")
	require.ErrorIs(t, err, domain.ErrAlreadyMember)

	_, err = repo.AddMember(ctx, "no-such-group", "user-2")
	require.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestGroupRepository_AddMember_CapacityIsNeverExceeded(t *testing.T) {
	ctx := context.Background()
	repo := NewGroupRepository()

	// One seat left after the admin.
	group := newTestGroup(t, 2)
	require.NoError(t, repo.Create(ctx, group))

	const contenders = 16
	var wg sync.WaitGroup
	errs := make([]error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.AddMember(ctx, group.ID, string(rune('a'+i)))
		}(i)
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

	stored, err := repo.GetByID(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, stored.Members, 2)
}

func TestGroupRepository_GetByID_ReturnsDetachedCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewGroupRepository()

	group := newTestGroup(t, 4)
	require.NoError(t, repo.Create(ctx, group))

	first, err := repo.GetByID(ctx, group.ID)
	require.NoError(t, err)
	first.Members[0] = "tampered"

	second, err := repo.GetByID(ctx, group.ID)
	require.NoError(t, err)
	require.Equal(t, "admin-1", second.Members[0])
}
