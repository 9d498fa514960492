package memory

import (
	"context"
	"sync"

	domain "github.com/open-builders/gws-backend/internal/domain/user"
)

// UserRepository is a fixed set of profiles, used for local runs and tests.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository(users ...domain.User) *UserRepository {
	r := &UserRepository{users: make(map[string]domain.User, len(users))}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

// Put adds or replaces a profile.
func (r *UserRepository) Put(u domain.User) {
	r.mu.Lock()
	r.users[u.ID] = u
	r.mu.Unlock()
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &u, nil
}
