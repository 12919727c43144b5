package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/usecase"
	"github.com/ErlanBelekov/account-service/internal/validation"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthResult, error)
	Signup(ctx context.Context, input usecase.SignupInput) (*usecase.AuthResult, error)
	Logout(ctx context.Context, accessToken string) error
}

type AuthHandler struct {
	authUsecase authUsecaser
	validator   *validation.Validator
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, validator *validation.Validator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
		logger:      logger.With("component", "auth_handler"),
	}
}

type authUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type authResponse struct {
	Token string           `json:"token"`
	User  authUserResponse `json:"user"`
}

func toAuthResponse(res *usecase.AuthResult) authResponse {
	return authResponse{
		Token: res.Token,
		User: authUserResponse{
			ID:        res.User.ID,
			Email:     res.User.Email,
			FirstName: res.User.FirstName,
			LastName:  res.User.LastName,
		},
	}
}

// POST /auth/login
// Returns 401 with the provider's message when credentials are rejected.
func (h *AuthHandler) Login(c *gin.Context) {
	var req validation.Login
	if !bind(c, h.validator, &req) {
		return
	}

	res, err := h.authUsecase.Login(c.Request.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var provErr *domain.ProviderError
		if errors.As(err, &provErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": provErr.Message})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toAuthResponse(res))
}

// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req validation.Signup
	if !bind(c, h.validator, &req) {
		return
	}

	res, err := h.authUsecase.Signup(c.Request.Context(), usecase.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		var provErr *domain.ProviderError
		switch {
		case errors.Is(err, domain.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": errUserExists})
		case errors.As(err, &provErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": provErr.Message})
		default:
			h.logger.ErrorContext(c.Request.Context(), "signup", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusCreated, toAuthResponse(res))
}

// POST /auth/logout
// The bearer token is optional; without one the provider call is a no-op.
func (h *AuthHandler) Logout(c *gin.Context) {
	accessToken, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		accessToken = ""
	}

	if err := h.authUsecase.Logout(c.Request.Context(), accessToken); err != nil {
		var provErr *domain.ProviderError
		if errors.As(err, &provErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": provErr.Message})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "logout", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgLoggedOut})
}
