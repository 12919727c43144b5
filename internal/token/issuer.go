package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionTTL is the fixed lifetime of an issued session token.
	SessionTTL = 7 * 24 * time.Hour

	audience = "authenticated"
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 session tokens. Tokens are stateless;
// expiry is the only lifetime bound.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(key []byte, opts ...Option) *Issuer {
	i := &Issuer{key: key, ttl: SessionTTL, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue returns a signed token for userID that expires SessionTTL from now.
func (i *Issuer) Issue(userID, email string) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the identity the token was
// issued for. Every failure is reported as domain.ErrTokenInvalid.
func (i *Issuer) Verify(raw string) (*domain.Identity, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, i.keyFunc,
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(audience),
	)
	if err != nil || !tok.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.Identity{
		ID:       claims.Subject,
		Email:    claims.Email,
		Audience: audience,
	}, nil
}

// IsSessionToken reports whether raw carries this issuer's signature,
// whether or not it has expired.
func (i *Issuer) IsSessionToken(raw string) bool {
	_, err := jwt.ParseWithClaims(raw, &Claims{}, i.keyFunc, jwt.WithoutClaimsValidation())
	return err == nil
}

func (i *Issuer) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return i.key, nil
}
