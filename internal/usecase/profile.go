package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/repository"
)

type ProfileUsecase struct {
	users repository.UserRepository
}

func NewProfileUsecase(users repository.UserRepository) *ProfileUsecase {
	return &ProfileUsecase{users: users}
}

type CreateProfileInput struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	DateOfBirth time.Time
	Postcode    string
}

type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	DateOfBirth *time.Time
	Postcode    *string
}

func (u *ProfileUsecase) GetProfile(ctx context.Context, ident *domain.Identity) (*domain.User, error) {
	user, err := u.resolve(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return user, nil
}

// CreateProfile creates the caller's profile row. Callers who signed up or
// logged in through this service already have one and get ErrUserExists.
func (u *ProfileUsecase) CreateProfile(ctx context.Context, ident *domain.Identity, input CreateProfileInput) (*domain.User, error) {
	if ident == nil || ident.Email == "" {
		return nil, domain.ErrUnauthorized
	}

	var externalID *string
	if ident.ExternalID != "" {
		externalID = &ident.ExternalID
	}

	user, err := u.users.Create(ctx, repository.CreateUserInput{
		Email:              normalizeEmail(ident.Email),
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		PhoneNumber:        &input.PhoneNumber,
		DateOfBirth:        &input.DateOfBirth,
		Postcode:           &input.Postcode,
		ExternalIdentityID: externalID,
	})
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return user, nil
}

func (u *ProfileUsecase) UpdateProfile(ctx context.Context, ident *domain.Identity, input UpdateProfileInput) (*domain.User, error) {
	id, err := u.userID(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	user, err := u.users.UpdateByID(ctx, id, repository.UpdateUserInput{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		DateOfBirth: input.DateOfBirth,
		Postcode:    input.Postcode,
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (u *ProfileUsecase) resolve(ctx context.Context, ident *domain.Identity) (*domain.User, error) {
	switch {
	case ident == nil:
		return nil, domain.ErrUnauthorized
	case ident.ID != "":
		return u.users.GetByID(ctx, ident.ID)
	case ident.ExternalID != "":
		return u.users.GetByExternalID(ctx, ident.ExternalID)
	default:
		return nil, domain.ErrUnauthorized
	}
}

func (u *ProfileUsecase) userID(ctx context.Context, ident *domain.Identity) (string, error) {
	if ident != nil && ident.ID != "" {
		return ident.ID, nil
	}
	user, err := u.resolve(ctx, ident)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
