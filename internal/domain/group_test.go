package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewGroup_AdminIsFoundingMember(t *testing.T) {
	group, err := NewGroup("admin-1", "Lisbon", "Porto", time.Now().Add(24*time.Hour), 100, 500, 4, TripAdventure, "coast trip")
	require.NoError(t, err)

	require.True(t, group.IsAdmin("admin-1"))
	require.True(t, group.IsMember("admin-1"))
	require.Len(t, group.Members, 1)
	require.NotEmpty(t, group.ID)
}

func TestNewGroup_RejectsInvalidInput(t *testing.T) {
	travelDate := time.Now().Add(24 * time.Hour)

	cases := []struct {
		name string
		fn   func() (*Group, error)
	}{
		{"missing admin", func() (*Group, error) {
			return NewGroup("", "Lisbon", "Porto", travelDate, 0, 100, 4, TripLeisure, "")
		}},
		{"budget max below min", func() (*Group, error) {
			return NewGroup("admin-1", "Lisbon", "Porto", travelDate, 500, 100, 4, TripLeisure, "")
		}},
		{"negative budget", func() (*Group, error) {
			return NewGroup("admin-1", "Lisbon", "Porto", travelDate, -1, 100, 4, TripLeisure, "")
		}},
		{"capacity below minimum", func() (*Group, error) {
			return NewGroup("admin-1", "Lisbon", "Porto", travelDate, 0, 100, 1, TripLeisure, "")
		}},
		{"unknown trip type", func() (*Group, error) {
			return NewGroup("admin-1", "Lisbon", "Porto", travelDate, 0, 100, 4, TripType("luxury"), "")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn()
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestGroup_IsFull(t *testing.T) {
	group, err := NewGroup("admin-1", "Lisbon", "Porto", time.Now().Add(24*time.Hour), 0, 100, 2, TripBudget, "")
	require.NoError(t, err)

	require.False(t, group.IsFull())

	group.Members = append(group.Members, "user-2")
	require.True(t, group.IsFull())
}
