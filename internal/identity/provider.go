// Package identity talks to the external identity provider and turns bearer
// tokens into authenticated identities.
package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
)

// Provider is the identity provider contract. Provider-side rejections are
// returned as *domain.ProviderError; anything else is a transport failure.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.ExternalAccount, error)
	SignUp(ctx context.Context, email, password string) (*domain.ExternalAccount, error)
	SignOut(ctx context.Context, accessToken string) error
	VerifyToken(ctx context.Context, accessToken string) (*domain.ExternalAccount, error)
}

// NewProvider returns a Memory provider for ENV=local without a provider URL,
// GoTrue otherwise.
func NewProvider(env, url, serviceKey string, timeout time.Duration, logger *slog.Logger) Provider {
	if env == "local" && url == "" {
		logger.Warn("IDENTITY_PROVIDER_URL not set, using in-memory identity provider")
		return NewMemory()
	}
	return NewGoTrue(GoTrueConfig{
		URL:        url,
		ServiceKey: serviceKey,
		Timeout:    timeout,
	})
}
