package repository

import (
	"context"
	"sync"

	"github.com/wayfare-app/wayfare/internal/domain"
)

type groupRepository struct {
	groups map[string]*domain.Group // ID -> Group
	mu     *sync.RWMutex
}

func NewGroupRepository() domain.GroupRepository {
	return &groupRepository{
		groups: make(map[string]*domain.Group),
		mu:     &sync.RWMutex{},
	}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	if group == nil || group.ID == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[group.ID]; exists {
		return domain.ErrGroupAlreadyExists
	}

	stored := *group
	stored.Members = append([]string(nil), group.Members...)
	r.groups[group.ID] = &stored

	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	group, exists := r.groups[id]
	if !exists {
		return nil, domain.ErrGroupNotFound
	}

	return copyGroup(group), nil
}

// AddMember is the conditional membership write: the seat check, the
// uniqueness check and the append happen under one lock so two racing
// approvals cannot both claim the last seat.
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	if groupID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	group, exists := r.groups[groupID]
	if !exists {
		return nil, domain.ErrGroupNotFound
	}
	if group.IsMember(userID) {
		return nil, domain.ErrAlreadyMember
	}
	if group.IsFull() {
		return nil, domain.ErrGroupFull
	}

	group.Members = append(group.Members, userID)

	return copyGroup(group), nil
}

// copyGroup returns a detached copy so callers can't mutate the stored
// member set behind the lock.
func copyGroup(g *domain.Group) *domain.Group {
	cpy := *g
	cpy.Members = append([]string(nil), g.Members...)
	return &cpy
}
