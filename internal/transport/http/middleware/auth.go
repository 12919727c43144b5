package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/account-service/internal/authctx"
	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	// IdentityKey is the gin context key holding the caller's *domain.Identity.
	IdentityKey = "identity"

	errNoAuthHeader = "No authorization header"
	errInvalidToken = "Invalid token"
	errAuthFailed   = "Authentication failed"
)

type tokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (*domain.Identity, error)
}

// Auth resolves the Bearer token to an identity, stores it on the gin and
// request contexts, and rejects the request with 401 otherwise.
func Auth(verifier tokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "auth_middleware")

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errNoAuthHeader})
			return
		}

		rawToken, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || rawToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidToken})
			return
		}

		ident, err := verify(c.Request.Context(), verifier, rawToken)
		if err != nil {
			var panicErr *verifierPanic
			if errors.As(err, &panicErr) {
				logger.ErrorContext(c.Request.Context(), "token verification panicked", "error", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errAuthFailed})
				return
			}
			logger.DebugContext(c.Request.Context(), "token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidToken})
			return
		}
		if ident == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidToken})
			return
		}

		c.Set(IdentityKey, ident)
		c.Request = c.Request.WithContext(authctx.WithIdentity(c.Request.Context(), ident))
		c.Next()
	}
}

type verifierPanic struct {
	value any
}

func (p *verifierPanic) Error() string {
	return fmt.Sprintf("verifier panic: %v", p.value)
}

func verify(ctx context.Context, verifier tokenVerifier, raw string) (ident *domain.Identity, err error) {
	defer func() {
		if r := recover(); r != nil {
			ident, err = nil, &verifierPanic{value: r}
		}
	}()
	return verifier.VerifyToken(ctx, raw)
}
