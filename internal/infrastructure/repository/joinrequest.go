package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/wayfare-app/wayfare/internal/domain"
)

type joinRequestRepository struct {
	requests map[string]*domain.JoinRequest // ID -> JoinRequest
	pending  map[pendingKey]string          // (group, requester) -> pending request ID
	mu       *sync.RWMutex
}

type pendingKey struct {
	groupID     string
	requesterID string
}

func NewJoinRequestRepository() domain.JoinRequestRepository {
	return &joinRequestRepository{
		requests: make(map[string]*domain.JoinRequest),
		pending:  make(map[pendingKey]string),
		mu:       &sync.RWMutex{},
	}
}

// CreatePending inserts a pending request unless one already exists for
// the pair. The index lookup and the insert share the lock, so a racing
// duplicate loses with ErrDuplicateRequest instead of double-inserting.
func (r *joinRequestRepository) CreatePending(ctx context.Context, request *domain.JoinRequest) error {
	if request == nil || request.ID == "" || request.GroupID == "" || request.RequesterID == "" {
		return domain.ErrInvalidInput
	}
	if request.Status != domain.RequestPending {
		return domain.ErrInvalidInput
	}

	key := pendingKey{request.GroupID, request.RequesterID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pending[key]; exists {
		return domain.ErrDuplicateRequest
	}

	stored := *request
	r.requests[request.ID] = &stored
	r.pending[key] = request.ID

	return nil
}

func (r *joinRequestRepository) GetByID(ctx context.Context, id string) (*domain.JoinRequest, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	request, exists := r.requests[id]
	if !exists {
		return nil, domain.ErrRequestNotFound
	}

	cpy := *request
	return &cpy, nil
}

// Transition moves a request out of pending. Terminal states never
// transition again; callers get ErrRequestNotPending.
func (r *joinRequestRepository) Transition(ctx context.Context, id string, to domain.RequestStatus) (*domain.JoinRequest, error) {
	if id == "" || (to != domain.RequestApproved && to != domain.RequestRejected) {
		return nil, domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	request, exists := r.requests[id]
	if !exists {
		return nil, domain.ErrRequestNotFound
	}
	if request.Status != domain.RequestPending {
		return nil, domain.ErrRequestNotPending
	}

	request.Status = to
	delete(r.pending, pendingKey{request.GroupID, request.RequesterID})

	cpy := *request
	return &cpy, nil
}

func (r *joinRequestRepository) ListPending(ctx context.Context, groupID string) ([]domain.JoinRequest, error) {
	if groupID == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.JoinRequest
	for _, request := range r.requests {
		if request.GroupID == groupID && request.Status == domain.RequestPending {
			result = append(result, *request)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}
