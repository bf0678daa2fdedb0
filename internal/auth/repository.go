package auth

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for user persistence.
type Repository interface {
	// FindByProviderID returns the user owning the given provider identity,
	// or nil without error when no such user exists.
	FindByProviderID(ctx context.Context, providerID string) (*User, error)

	// FindByID returns the user with the given local identifier, or nil
	// without error when no such user exists.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Create durably stores a new user. It returns ErrConflict when another
	// user already holds the same provider identity.
	Create(ctx context.Context, user User) (User, error)
}
