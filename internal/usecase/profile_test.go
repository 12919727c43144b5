package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/repository"
	"github.com/ErlanBelekov/account-service/internal/usecase"
)

var testProfile = &domain.User{ID: "user-1", Email: "test@example.com", FirstName: "Ada", LastName: "Lovelace"}

func TestGetProfile_SessionIdentity_LooksUpByID(t *testing.T) {
	repo := &fakeUserRepo{
		getByID: func(_ context.Context, id string) (*domain.User, error) {
			if id != "user-1" {
				t.Errorf("id = %q", id)
			}
			return testProfile, nil
		},
	}

	got, err := usecase.NewProfileUsecase(repo).GetProfile(context.Background(), &domain.Identity{ID: "user-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != testProfile {
		t.Errorf("got %+v", got)
	}
}

func TestGetProfile_ProviderIdentity_LooksUpByExternalID(t *testing.T) {
	repo := &fakeUserRepo{
		getByExternalID: func(_ context.Context, externalID string) (*domain.User, error) {
			if externalID != "ext-1" {
				t.Errorf("external id = %q", externalID)
			}
			return testProfile, nil
		},
	}

	if _, err := usecase.NewProfileUsecase(repo).GetProfile(context.Background(), &domain.Identity{ExternalID: "ext-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	repo := &fakeUserRepo{
		getByID: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, err := usecase.NewProfileUsecase(repo).GetProfile(context.Background(), &domain.Identity{ID: "missing"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestGetProfile_EmptyIdentity_Unauthorized(t *testing.T) {
	uc := usecase.NewProfileUsecase(&fakeUserRepo{})
	for _, ident := range []*domain.Identity{nil, {}} {
		if _, err := uc.GetProfile(context.Background(), ident); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("identity %+v: want ErrUnauthorized, got %v", ident, err)
		}
	}
}

func TestCreateProfile_UsesIdentityEmailAndExternalID(t *testing.T) {
	dob := time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC)
	var got repository.CreateUserInput

	repo := &fakeUserRepo{
		create: func(_ context.Context, input repository.CreateUserInput) (*domain.User, error) {
			got = input
			return &domain.User{ID: "user-3", Email: input.Email}, nil
		},
	}

	_, err := usecase.NewProfileUsecase(repo).CreateProfile(context.Background(),
		&domain.Identity{Email: "p@example.com", ExternalID: "ext-3"},
		usecase.CreateProfileInput{FirstName: "Ada", LastName: "Lovelace", PhoneNumber: "+447700900123", DateOfBirth: dob, Postcode: "SW1A 1AA"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Email != "p@example.com" {
		t.Errorf("email = %q", got.Email)
	}
	if got.ExternalIdentityID == nil || *got.ExternalIdentityID != "ext-3" {
		t.Errorf("external id = %v", got.ExternalIdentityID)
	}
	if got.DateOfBirth == nil || !got.DateOfBirth.Equal(dob) {
		t.Errorf("dob = %v", got.DateOfBirth)
	}
	if got.Postcode == nil || *got.Postcode != "SW1A 1AA" {
		t.Errorf("postcode = %v", got.Postcode)
	}
}

func TestCreateProfile_Existing_ReturnsErrUserExists(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _ repository.CreateUserInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}

	_, err := usecase.NewProfileUsecase(repo).CreateProfile(context.Background(),
		&domain.Identity{ID: "user-1", Email: "test@example.com"}, usecase.CreateProfileInput{})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("want ErrUserExists, got %v", err)
	}
}

func TestCreateProfile_NoEmail_Unauthorized(t *testing.T) {
	_, err := usecase.NewProfileUsecase(&fakeUserRepo{}).CreateProfile(context.Background(),
		&domain.Identity{ID: "user-1"}, usecase.CreateProfileInput{})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("want ErrUnauthorized, got %v", err)
	}
}

func TestUpdateProfile_PassesOnlyProvidedFields(t *testing.T) {
	postcode := "EC1A 1BB"
	var got repository.UpdateUserInput

	repo := &fakeUserRepo{
		updateByID: func(_ context.Context, id string, input repository.UpdateUserInput) (*domain.User, error) {
			if id != "user-1" {
				t.Errorf("id = %q", id)
			}
			got = input
			return testProfile, nil
		},
	}

	_, err := usecase.NewProfileUsecase(repo).UpdateProfile(context.Background(),
		&domain.Identity{ID: "user-1"}, usecase.UpdateProfileInput{Postcode: &postcode})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FirstName != nil || got.LastName != nil || got.PhoneNumber != nil || got.DateOfBirth != nil {
		t.Errorf("unexpected fields set: %+v", got)
	}
	if got.Postcode == nil || *got.Postcode != postcode {
		t.Errorf("postcode = %v", got.Postcode)
	}
}

func TestUpdateProfile_ProviderIdentity_ResolvesIDFirst(t *testing.T) {
	var updatedID string
	repo := &fakeUserRepo{
		getByExternalID: func(_ context.Context, _ string) (*domain.User, error) {
			return testProfile, nil
		},
		updateByID: func(_ context.Context, id string, _ repository.UpdateUserInput) (*domain.User, error) {
			updatedID = id
			return testProfile, nil
		},
	}

	if _, err := usecase.NewProfileUsecase(repo).UpdateProfile(context.Background(),
		&domain.Identity{ExternalID: "ext-1"}, usecase.UpdateProfileInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updatedID != testProfile.ID {
		t.Errorf("updated id = %q", updatedID)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	repo := &fakeUserRepo{
		updateByID: func(_ context.Context, _ string, _ repository.UpdateUserInput) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, err := usecase.NewProfileUsecase(repo).UpdateProfile(context.Background(),
		&domain.Identity{ID: "gone"}, usecase.UpdateProfileInput{})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}
