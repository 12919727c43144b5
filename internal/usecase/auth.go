package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/email"
	"github.com/ErlanBelekov/account-service/internal/metrics"
	"github.com/ErlanBelekov/account-service/internal/repository"
)

type identityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.ExternalAccount, error)
	SignUp(ctx context.Context, email, password string) (*domain.ExternalAccount, error)
	SignOut(ctx context.Context, accessToken string) error
}

type sessionIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
	IsSessionToken(raw string) bool
}

type identityEvictor interface {
	Forget(ctx context.Context, raw string) error
}

type welcomeSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

const welcomeEmailTimeout = 5 * time.Second

type AuthUsecase struct {
	users    repository.UserRepository
	provider identityProvider
	issuer   sessionIssuer
	mailer   welcomeSender
	evictor  identityEvictor
	logger   *slog.Logger
}

type AuthOption func(*AuthUsecase)

// WithWelcomeEmail sends a welcome email after each successful signup.
// Delivery failures are logged and never fail the signup.
func WithWelcomeEmail(mailer welcomeSender) AuthOption {
	return func(u *AuthUsecase) { u.mailer = mailer }
}

// WithIdentityEviction drops cached identities for provider tokens on logout.
func WithIdentityEviction(evictor identityEvictor) AuthOption {
	return func(u *AuthUsecase) { u.evictor = evictor }
}

func NewAuthUsecase(users repository.UserRepository, provider identityProvider, issuer sessionIssuer, logger *slog.Logger, opts ...AuthOption) *AuthUsecase {
	u := &AuthUsecase{
		users:    users,
		provider: provider,
		issuer:   issuer,
		logger:   logger.With("component", "auth_usecase"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type LoginInput struct {
	Email    string
	Password string
}

type SignupInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber *string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login checks credentials with the provider, makes sure a local user row
// exists for the email, and issues a session token.
func (u *AuthUsecase) Login(ctx context.Context, input LoginInput) (result *AuthResult, err error) {
	defer func() { recordAttempt("login", err) }()

	addr := normalizeEmail(input.Email)
	acc, err := u.provider.SignInWithPassword(ctx, addr, input.Password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	user, err := u.users.UpsertByEmail(ctx, addr, repository.CreateUserInput{
		Email:              addr,
		ExternalIdentityID: &acc.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return u.issue(user)
}

// Signup creates the provider account, then the local user row.
// If the second step fails the provider account is left in place.
func (u *AuthUsecase) Signup(ctx context.Context, input SignupInput) (result *AuthResult, err error) {
	defer func() { recordAttempt("signup", err) }()

	addr := normalizeEmail(input.Email)
	acc, err := u.provider.SignUp(ctx, addr, input.Password)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	user, err := u.users.Create(ctx, repository.CreateUserInput{
		Email:              addr,
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		PhoneNumber:        input.PhoneNumber,
		ExternalIdentityID: &acc.ID,
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "provider account created without local user",
			"external_id", acc.ID, "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	res, err := u.issue(user)
	if err != nil {
		return nil, err
	}
	u.sendWelcome(ctx, user)
	return res, nil
}

func (u *AuthUsecase) sendWelcome(ctx context.Context, user *domain.User) {
	if u.mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, welcomeEmailTimeout)
	defer cancel()

	subject, body := email.Welcome(user.FirstName)
	if err := u.mailer.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.WarnContext(ctx, "welcome email", "user_id", user.ID, "error", err)
	}
}

// Logout ends the provider session for accessToken. Session tokens issued by
// this service are stateless: they never reach the provider and stay valid
// until they expire.
func (u *AuthUsecase) Logout(ctx context.Context, accessToken string) (err error) {
	defer func() { recordAttempt("logout", err) }()

	if accessToken != "" && u.issuer.IsSessionToken(accessToken) {
		return nil
	}

	err = u.provider.SignOut(ctx, accessToken)
	if accessToken != "" && u.evictor != nil {
		if ferr := u.evictor.Forget(ctx, accessToken); ferr != nil {
			u.logger.WarnContext(ctx, "evict cached identity", "error", ferr)
		}
	}
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (u *AuthUsecase) issue(user *domain.User) (*AuthResult, error) {
	tok, expiresAt, err := u.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	metrics.SessionTokensIssuedTotal.Inc()
	return &AuthResult{Token: tok, ExpiresAt: expiresAt, User: user}, nil
}

// Providers compare emails case-insensitively; the local store does not.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func recordAttempt(op string, err error) {
	outcome := "success"
	var provErr *domain.ProviderError
	switch {
	case errors.As(err, &provErr):
		outcome = "rejected"
	case errors.Is(err, domain.ErrUserExists):
		outcome = "conflict"
	case err != nil:
		outcome = "error"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(op, outcome).Inc()
}
