// Package admission enforces the join-request state machine: a
// non-member files a pending request, the group admin approves or
// rejects it, and approval claims a seat without ever exceeding the
// group's capacity.
package admission

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wayfare-app/wayfare/internal/application/authz"
	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/infrastructure/events"
	"github.com/wayfare-app/wayfare/internal/infrastructure/metrics"
)

type Engine interface {
	RequestJoin(ctx context.Context, groupID, requesterID string) (*domain.JoinRequest, error)
	Approve(ctx context.Context, groupID, requestID, actorID string) (*domain.Group, error)
	Reject(ctx context.Context, groupID, requestID, actorID string) error
	ListPending(ctx context.Context, groupID, actorID string) ([]domain.PendingRequest, error)
}

type engine struct {
	groups     domain.GroupRepository
	requests   domain.JoinRequestRepository
	users      domain.UserRepository
	authorizer *authz.Authorizer
	publisher  events.AdmissionPublisher
	metrics    *metrics.Metrics
	logger     *zap.SugaredLogger

	// locks serializes admission mutations per group so two approvals
	// racing for the last seat resolve in a single order.
	locks *keyedMutex
}

func NewEngine(
	groups domain.GroupRepository,
	requests domain.JoinRequestRepository,
	users domain.UserRepository,
	authorizer *authz.Authorizer,
	publisher events.AdmissionPublisher,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
) Engine {
	return &engine{
		groups:     groups,
		requests:   requests,
		users:      users,
		authorizer: authorizer,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		locks:      newKeyedMutex(),
	}
}

// RequestJoin creates a pending request. The store-level pending index
// makes the duplicate check atomic: two concurrent requests from the
// same traveler cannot both insert.
func (e *engine) RequestJoin(ctx context.Context, groupID, requesterID string) (*domain.JoinRequest, error) {
	unlock := e.locks.lock(groupID)
	defer unlock()

	group, err := e.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.IsMember(requesterID) {
		return nil, domain.ErrAlreadyMember
	}
	if group.IsFull() {
		return nil, domain.ErrGroupFull
	}

	request, err := domain.NewJoinRequest(groupID, requesterID)
	if err != nil {
		return nil, err
	}

	if err := e.requests.CreatePending(ctx, request); err != nil {
		return nil, err
	}

	e.metrics.AdmissionDecisions.WithLabelValues("requested").Inc()
	if err := e.publisher.PublishRequestCreated(ctx, *request); err != nil {
		e.logger.Warnw("failed to publish admission event", "event", "requested", "error", err)
	}

	return request, nil
}

// Approve claims a seat for the requester. The per-group lock plus the
// store's conditional member add make approval linearizable: when one
// seat remains and two approvals race, exactly one wins and the other
// observes ErrGroupFull with the request left untouched.
func (e *engine) Approve(ctx context.Context, groupID, requestID, actorID string) (*domain.Group, error) {
	unlock := e.locks.lock(groupID)
	defer unlock()

	if _, err := e.authorizer.RequireAdmin(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	request, err := e.loadGroupRequest(ctx, groupID, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestPending {
		return nil, domain.ErrRequestNotPending
	}

	// Claim the seat before transitioning the request: a request must
	// never read approved while its seat claim failed.
	group, err := e.groups.AddMember(ctx, groupID, request.RequesterID)
	if err != nil {
		return nil, err
	}

	approved, err := e.requests.Transition(ctx, requestID, domain.RequestApproved)
	if err != nil {
		// The seat is claimed but the request didn't transition. This
		// can only happen if another writer touched the request outside
		// the per-group lock; surface it loudly.
		e.logger.Errorw("seat claimed but request transition failed",
			"group", groupID, "request", requestID, "error", err)
		return nil, fmt.Errorf("%w: request transition failed", domain.ErrUnavailable)
	}

	e.metrics.AdmissionDecisions.WithLabelValues("approved").Inc()
	if err := e.publisher.PublishRequestApproved(ctx, actorID, *approved); err != nil {
		e.logger.Warnw("failed to publish admission event", "event", "approved", "error", err)
	}

	return group, nil
}

// Reject transitions the request to its terminal rejected state. The
// engine is strict: rejecting a request that is no longer pending fails
// with ErrRequestNotPending rather than silently succeeding.
func (e *engine) Reject(ctx context.Context, groupID, requestID, actorID string) error {
	unlock := e.locks.lock(groupID)
	defer unlock()

	if _, err := e.authorizer.RequireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}

	if _, err := e.loadGroupRequest(ctx, groupID, requestID); err != nil {
		return err
	}

	rejected, err := e.requests.Transition(ctx, requestID, domain.RequestRejected)
	if err != nil {
		return err
	}

	e.metrics.AdmissionDecisions.WithLabelValues("rejected").Inc()
	if err := e.publisher.PublishRequestRejected(ctx, actorID, *rejected); err != nil {
		e.logger.Warnw("failed to publish admission event", "event", "rejected", "error", err)
	}

	return nil
}

// ListPending returns the group's pending requests joined with the
// requesters' minimal profiles, oldest first. Admin only.
func (e *engine) ListPending(ctx context.Context, groupID, actorID string) ([]domain.PendingRequest, error) {
	if _, err := e.authorizer.RequireAdmin(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	requests, err := e.requests.ListPending(ctx, groupID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.PendingRequest, 0, len(requests))
	for _, request := range requests {
		user, err := e.users.GetByID(ctx, request.RequesterID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				// Account deleted since the request was filed; skip it.
				continue
			}
			return nil, err
		}

		result = append(result, domain.PendingRequest{
			Request: request,
			User:    user.Profile(),
		})
	}

	return result, nil
}

// loadGroupRequest fetches a request and verifies it belongs to the
// group named in the URL. A request ID from another group reads as
// not found, not as a cross-group handle.
func (e *engine) loadGroupRequest(ctx context.Context, groupID, requestID string) (*domain.JoinRequest, error) {
	request, err := e.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.GroupID != groupID {
		return nil, domain.ErrRequestNotFound
	}
	return request, nil
}
