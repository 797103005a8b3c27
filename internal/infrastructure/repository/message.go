package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wayfare-app/wayfare/internal/domain"
)

// Oldest messages are evicted when capacity is exceeded.
type messageRepository struct {
	messages map[string][]domain.ChatMessage // groupID -> []ChatMessage
	capacity uint
	mu       *sync.RWMutex
}

func NewMessageRepository(capacity uint) domain.MessageRepository {
	if capacity == 0 {
		capacity = 1000 // sane default
	}
	return &messageRepository{
		capacity: capacity,
		messages: make(map[string][]domain.ChatMessage),
		mu:       &sync.RWMutex{},
	}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	if message == nil || message.GroupID == "" {
		return domain.ErrInvalidInput
	}

	// Generate ID if not set
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	groupMsgs, exists := r.messages[message.GroupID]
	if !exists {
		groupMsgs = make([]domain.ChatMessage, 0, r.capacity)
	}

	groupMsgs = append(groupMsgs, *message)

	// Evict oldest if over capacity
	if len(groupMsgs) > int(r.capacity) {
		excess := len(groupMsgs) - int(r.capacity)
		groupMsgs = groupMsgs[excess:] // drop oldest
	}

	r.messages[message.GroupID] = groupMsgs

	return nil
}

func (r *messageRepository) GetRecent(ctx context.Context, groupID string, limit int) ([]domain.ChatMessage, error) {
	if groupID == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	groupMsgs, exists := r.messages[groupID]
	if !exists || len(groupMsgs) == 0 {
		return []domain.ChatMessage{}, nil
	}

	start := 0
	if limit > 0 && len(groupMsgs) > limit {
		start = len(groupMsgs) - limit
	}

	// Return a copy to prevent external mutation
	cpy := make([]domain.ChatMessage, len(groupMsgs)-start)
	copy(cpy, groupMsgs[start:])

	return cpy, nil
}
