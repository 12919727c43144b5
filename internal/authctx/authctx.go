package authctx

import (
	"context"

	"github.com/ErlanBelekov/account-service/internal/domain"
)

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying the authenticated caller.
func WithIdentity(ctx context.Context, ident *domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, ident)
}

// FromContext returns the authenticated caller, or nil if the request is anonymous.
func FromContext(ctx context.Context) *domain.Identity {
	ident, _ := ctx.Value(ctxKey{}).(*domain.Identity)
	return ident
}

// UserID returns whichever identifier the caller is known by, preferring the
// local user ID. Returns "" for anonymous requests.
func UserID(ctx context.Context) string {
	ident := FromContext(ctx)
	if ident == nil {
		return ""
	}
	if ident.ID != "" {
		return ident.ID
	}
	return ident.ExternalID
}
