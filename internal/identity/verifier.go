package identity

import (
	"context"
	"errors"

	"github.com/ErlanBelekov/account-service/internal/domain"
)

// Verifier resolves a bearer token to an identity.
type Verifier interface {
	VerifyToken(ctx context.Context, raw string) (*domain.Identity, error)
}

type sessionVerifier interface {
	Verify(raw string) (*domain.Identity, error)
}

type accountVerifier interface {
	VerifyToken(ctx context.Context, accessToken string) (*domain.ExternalAccount, error)
}

// SessionVerifier adapts the local session token issuer to Verifier.
type SessionVerifier struct {
	issuer sessionVerifier
}

func NewSessionVerifier(issuer sessionVerifier) *SessionVerifier {
	return &SessionVerifier{issuer: issuer}
}

func (v *SessionVerifier) VerifyToken(_ context.Context, raw string) (*domain.Identity, error) {
	return v.issuer.Verify(raw)
}

// ProviderVerifier verifies provider-issued access tokens. The resulting
// identity only carries the provider's account ID.
type ProviderVerifier struct {
	provider accountVerifier
}

func NewProviderVerifier(provider accountVerifier) *ProviderVerifier {
	return &ProviderVerifier{provider: provider}
}

func (v *ProviderVerifier) VerifyToken(ctx context.Context, raw string) (*domain.Identity, error) {
	acc, err := v.provider.VerifyToken(ctx, raw)
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.ID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.Identity{
		Email:      acc.Email,
		Audience:   acc.Audience,
		ExternalID: acc.ID,
	}, nil
}

// Chain tries each verifier in order and returns the first success.
type Chain []Verifier

func (c Chain) VerifyToken(ctx context.Context, raw string) (*domain.Identity, error) {
	errs := make([]error, 0, len(c))
	for _, v := range c {
		ident, err := v.VerifyToken(ctx, raw)
		if err == nil && ident != nil {
			return ident, nil
		}
		if err == nil {
			err = domain.ErrTokenInvalid
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, domain.ErrTokenInvalid
	}
	return nil, errors.Join(errs...)
}
