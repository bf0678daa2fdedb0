package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository stores users in an in-process map, ideal for local development or tests.
type InMemoryRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]User
	byProvider map[string]uuid.UUID
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:       make(map[uuid.UUID]User),
		byProvider: make(map[string]uuid.UUID),
	}
}

// FindByProviderID returns the user for a provider identity, or nil on a miss.
func (r *InMemoryRepository) FindByProviderID(_ context.Context, providerID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byProvider[providerID]
	if !ok {
		return nil, nil
	}
	user := r.byID[id]
	return &user, nil
}

// FindByID returns the user with the given local identifier, or nil on a miss.
func (r *InMemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// Create stores a new user, enforcing the one-user-per-provider-identity invariant.
func (r *InMemoryRepository) Create(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byProvider[user.ProviderID]; exists {
		return User{}, fmt.Errorf("provider id %q: %w", user.ProviderID, ErrConflict)
	}

	r.byID[user.ID] = user
	r.byProvider[user.ProviderID] = user.ID
	return user, nil
}
