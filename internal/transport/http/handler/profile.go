package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/account-service/internal/authctx"
	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/usecase"
	"github.com/ErlanBelekov/account-service/internal/validation"
	"github.com/gin-gonic/gin"
)

type profileUsecaser interface {
	GetProfile(ctx context.Context, ident *domain.Identity) (*domain.User, error)
	CreateProfile(ctx context.Context, ident *domain.Identity, input usecase.CreateProfileInput) (*domain.User, error)
	UpdateProfile(ctx context.Context, ident *domain.Identity, input usecase.UpdateProfileInput) (*domain.User, error)
}

type ProfileHandler struct {
	profileUsecase profileUsecaser
	validator      *validation.Validator
	logger         *slog.Logger
}

func NewProfileHandler(profileUsecase profileUsecaser, validator *validation.Validator, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUsecase: profileUsecase,
		validator:      validator,
		logger:         logger.With("component", "profile_handler"),
	}
}

type profileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber *string   `json:"phone_number"`
	DateOfBirth *string   `json:"date_of_birth"`
	Postcode    *string   `json:"postcode"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProfileResponse(u *domain.User) profileResponse {
	resp := profileResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Postcode:    u.Postcode,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.DateOfBirth != nil {
		dob := u.DateOfBirth.Format(validation.DateLayout)
		resp.DateOfBirth = &dob
	}
	return resp
}

// GET /profile
func (h *ProfileHandler) Get(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	user, err := h.profileUsecase.GetProfile(c.Request.Context(), ident)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errProfileNotFound})
		case errors.Is(err, domain.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		default:
			h.logger.ErrorContext(c.Request.Context(), "get profile", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errFetchProfile})
		}
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(user))
}

// POST /profile
func (h *ProfileHandler) Create(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req validation.ProfileCreate
	if !bind(c, h.validator, &req) {
		return
	}

	// Already validated against DateLayout.
	dob, _ := time.Parse(validation.DateLayout, req.DateOfBirth)

	user, err := h.profileUsecase.CreateProfile(c.Request.Context(), ident, usecase.CreateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: dob,
		Postcode:    req.Postcode,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": errProfileExists})
		case errors.Is(err, domain.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		default:
			h.logger.ErrorContext(c.Request.Context(), "create profile", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errCreateProfile})
		}
		return
	}

	c.JSON(http.StatusCreated, toProfileResponse(user))
}

// PUT /profile
// Partial update: only fields present in the body are changed.
func (h *ProfileHandler) Update(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req validation.ProfileUpdate
	if !bind(c, h.validator, &req) {
		return
	}

	input := usecase.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Postcode:    req.Postcode,
	}
	if req.DateOfBirth != nil {
		dob, _ := time.Parse(validation.DateLayout, *req.DateOfBirth)
		input.DateOfBirth = &dob
	}

	user, err := h.profileUsecase.UpdateProfile(c.Request.Context(), ident, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errProfileNotFound})
		case errors.Is(err, domain.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		default:
			h.logger.ErrorContext(c.Request.Context(), "update profile", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errUpdateProfile})
		}
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(user))
}

func requireIdentity(c *gin.Context) (*domain.Identity, bool) {
	ident := authctx.FromContext(c.Request.Context())
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return nil, false
	}
	return ident, true
}
