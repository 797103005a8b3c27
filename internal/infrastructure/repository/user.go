package repository

import (
	"context"
	"sync"

	"github.com/wayfare-app/wayfare/internal/domain"
)

// userRepository is a read-mostly mirror of the account collaborator's
// profiles. Put exists for seeding in standalone mode and tests.
type userRepository struct {
	users map[string]*domain.User
	mu    *sync.RWMutex
}

type UserSeeder interface {
	domain.UserRepository
	Put(ctx context.Context, user *domain.User) error
}

func NewUserRepository() UserSeeder {
	return &userRepository{
		users: make(map[string]*domain.User),
		mu:    &sync.RWMutex{},
	}
}

func (r *userRepository) Put(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *user
	r.users[user.ID] = &stored

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	cpy := *user
	return &cpy, nil
}
