package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the request and response header carrying the ID.
const Header = "X-Request-ID"

const maxLen = 128

type ctxKey struct{}

// New generates a random UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

// Accept returns incoming if it is usable as a request ID, otherwise a new
// one. Usable means non-empty, at most 128 bytes, and printable ASCII, so a
// client cannot inject line breaks into logs.
func Accept(incoming string) string {
	if incoming == "" || len(incoming) > maxLen {
		return New()
	}
	for i := 0; i < len(incoming); i++ {
		if c := incoming[i]; c < 0x21 || c > 0x7e {
			return New()
		}
	}
	return incoming
}

// WithRequestID returns a copy of ctx with the request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
