package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRequestNotFound   = errors.New("join request not found")
	ErrDuplicateRequest  = errors.New("join request already exists")
	ErrRequestNotPending = errors.New("join request is not pending")
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// JoinRequest is a traveler's petition to join a group. It is created
// pending and transitions exactly once to approved or rejected; both
// outcomes are terminal. A rejected traveler may file a fresh request.
type JoinRequest struct {
	ID          string        `json:"id" bson:"id"`
	GroupID     string        `json:"group_id" bson:"group_id"`
	RequesterID string        `json:"requester_id" bson:"requester_id"`
	Status      RequestStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
}

func NewJoinRequest(groupID, requesterID string) (*JoinRequest, error) {
	if groupID == "" || requesterID == "" {
		return nil, ErrInvalidInput
	}

	return &JoinRequest{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		RequesterID: requesterID,
		Status:      RequestPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// PendingRequest pairs a pending request with the requester's profile
// for the admin's review list.
type PendingRequest struct {
	Request JoinRequest `json:"request"`
	User    Profile     `json:"user"`
}

// JoinRequestRepository stores the request state machine.
//
// CreatePending must be atomic with respect to concurrent creates for
// the same (group, requester) pair: at most one pending request may
// exist for the pair, enforced by the store, and a losing racer gets
// ErrDuplicateRequest. Transition must be conditional on the current
// status being pending and report ErrRequestNotPending otherwise.
type JoinRequestRepository interface {
	CreatePending(ctx context.Context, request *JoinRequest) error
	GetByID(ctx context.Context, id string) (*JoinRequest, error)
	Transition(ctx context.Context, id string, to RequestStatus) (*JoinRequest, error)
	ListPending(ctx context.Context, groupID string) ([]JoinRequest, error)
}
