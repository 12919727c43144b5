package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrTokenInvalid = errors.New("token is invalid or expired")
	ErrUnauthorized = errors.New("unauthorized")
)

type User struct {
	ID                 string
	Email              string
	FirstName          string
	LastName           string
	PhoneNumber        *string
	DateOfBirth        *time.Time
	Postcode           *string
	ExternalIdentityID *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Identity is the caller resolved from a bearer token. Session tokens carry
// the local user ID; provider access tokens carry only ExternalID.
type Identity struct {
	ID         string
	Email      string
	Audience   string
	ExternalID string
}

// ExternalAccount is an account as reported by the identity provider.
type ExternalAccount struct {
	ID          string
	Email       string
	Audience    string
	AccessToken string
}

// ProviderError is a failure reported by the identity provider itself, as
// opposed to a transport failure reaching it. Message is safe to show callers.
type ProviderError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider %s: %s", e.Op, e.Message)
}
