package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
)

// CreateUserInput holds the fields a new user row is created with.
// The ID is assigned by the store.
type CreateUserInput struct {
	Email              string
	FirstName          string
	LastName           string
	PhoneNumber        *string
	DateOfBirth        *time.Time
	Postcode           *string
	ExternalIdentityID *string
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	DateOfBirth *time.Time
	Postcode    *string
}

// UserRepository is the profile store. Usecases depend on this interface so
// the persistence layer can be swapped or faked in tests.
type UserRepository interface {
	// UpsertByEmail returns the user with this email, creating it from defaults if absent.
	UpsertByEmail(ctx context.Context, email string, defaults CreateUserInput) (*domain.User, error)
	// Create returns domain.ErrUserExists on a duplicate email or external identity.
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	UpdateByID(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
}
