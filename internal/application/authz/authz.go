// Package authz is the single membership predicate. Both the admission
// engine and the chat layer ask it the same question against the live
// membership store; nothing caches the answer on a connection.
package authz

import (
	"context"

	"github.com/wayfare-app/wayfare/internal/domain"
)

type Authorizer struct {
	groups domain.GroupRepository
}

func New(groups domain.GroupRepository) *Authorizer {
	return &Authorizer{groups: groups}
}

// RequireMember loads the group and fails with ErrNotAuthorized unless
// the user is currently in its member set.
func (a *Authorizer) RequireMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	group, err := a.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(userID) {
		return nil, domain.ErrNotAuthorized
	}
	return group, nil
}

// RequireAdmin loads the group and fails with ErrNotAuthorized unless
// the user is its admin.
func (a *Authorizer) RequireAdmin(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	group, err := a.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(userID) {
		return nil, domain.ErrNotAuthorized
	}
	return group, nil
}
