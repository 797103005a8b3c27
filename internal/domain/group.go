package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const MinGroupSize = 2

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrGroupAlreadyExists = errors.New("group already exists")
	ErrGroupFull          = errors.New("group is full")
	ErrAlreadyMember      = errors.New("already a member")
)

type TripType string

const (
	TripAdventure TripType = "adventure"
	TripLeisure   TripType = "leisure"
	TripBudget    TripType = "budget"
)

func (t TripType) Valid() bool {
	switch t {
	case TripAdventure, TripLeisure, TripBudget:
		return true
	}
	return false
}

// Group is a travel group. Creation, search and editing belong to the
// CRUD collaborator; the core reads capacity, admin and members, and is
// the only writer of the member set (through approval).
type Group struct {
	ID           string    `json:"id" bson:"id"`
	FromLocation string    `json:"from_location" bson:"from_location"`
	ToLocation   string    `json:"to_location" bson:"to_location"`
	TravelDate   time.Time `json:"travel_date" bson:"travel_date"`
	BudgetMin    int       `json:"budget_min" bson:"budget_min"`
	BudgetMax    int       `json:"budget_max" bson:"budget_max"`
	TripType     TripType  `json:"trip_type" bson:"trip_type"`
	Description  string    `json:"description" bson:"description"`
	MaxMembers   int       `json:"max_members" bson:"max_members"`
	AdminID      string    `json:"admin_id" bson:"admin_id"`
	Members      []string  `json:"members" bson:"members"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

func NewGroup(adminID, from, to string, travelDate time.Time, budgetMin, budgetMax, maxMembers int, tripType TripType, description string) (*Group, error) {
	if adminID == "" || from == "" || to == "" {
		return nil, ErrInvalidInput
	}
	if budgetMin < 0 || budgetMax < budgetMin {
		return nil, fmt.Errorf("%w: budget range must satisfy 0 <= min <= max", ErrInvalidInput)
	}
	if maxMembers < MinGroupSize {
		return nil, fmt.Errorf("%w: group needs room for at least %d travelers", ErrInvalidInput, MinGroupSize)
	}
	if !tripType.Valid() {
		return nil, fmt.Errorf("%w: unknown trip type %q", ErrInvalidInput, tripType)
	}

	return &Group{
		ID:           uuid.NewString(),
		FromLocation: from,
		ToLocation:   to,
		TravelDate:   travelDate,
		BudgetMin:    budgetMin,
		BudgetMax:    budgetMax,
		TripType:     tripType,
		Description:  description,
		MaxMembers:   maxMembers,
		AdminID:      adminID,
		Members:      []string{adminID},
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (g *Group) IsAdmin(userID string) bool {
	return userID != "" && g.AdminID == userID
}

func (g *Group) IsMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

func (g *Group) IsFull() bool {
	return len(g.Members) >= g.MaxMembers
}

// GroupRepository is the membership store. AddMember is the single
// mutation the core performs and must be conditional: the member is
// added only if the group still has a seat and the user is not already
// in the set, in one atomic step.
type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	GetByID(ctx context.Context, id string) (*Group, error)
	AddMember(ctx context.Context, groupID, userID string) (*Group, error)
}
