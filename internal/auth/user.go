package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a user cannot be located.
var ErrNotFound = errors.New("user not found")

// ErrConflict is returned when a create collides with an existing provider identity.
var ErrConflict = errors.New("user already exists")

// User represents one authenticated end-user. A user is created on first
// login and never updated afterwards; subsequent logins return the stored
// record as-is.
type User struct {
	ID         uuid.UUID
	ProviderID string
	Name       string
	Email      string
	CreatedAt  time.Time
}

// GoogleClaims contains the relevant claims from a Google ID token.
type GoogleClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
