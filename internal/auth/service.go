package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service resolves provider identities to local user records.
type Service struct {
	repo Repository
}

// NewService creates a new auth Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ResolveIdentity turns verified provider claims into a local user. A user
// seen before is returned exactly as stored; the profile is not refreshed on
// login. A never-seen provider identity gets a record created from the
// claims' id, display name and email.
func (s *Service) ResolveIdentity(ctx context.Context, claims *GoogleClaims) (*User, error) {
	existing, err := s.repo.FindByProviderID(ctx, claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	newUser := User{
		ID:         uuid.New(),
		ProviderID: claims.Sub,
		Name:       claims.Name,
		Email:      claims.Email,
		CreatedAt:  time.Now(),
	}

	created, err := s.repo.Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			// Two first-logins raced; the store kept one winner.
			return s.lookupWinner(ctx, claims.Sub)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &created, nil
}

// UserByID re-resolves a user for an already-established session.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *Service) lookupWinner(ctx context.Context, providerID string) (*User, error) {
	winner, err := s.repo.FindByProviderID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("find user after conflict: %w", err)
	}
	if winner == nil {
		return nil, fmt.Errorf("create user: %w", ErrConflict)
	}
	return winner, nil
}
