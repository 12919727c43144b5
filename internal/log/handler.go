package log

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ErlanBelekov/account-service/internal/authctx"
	"github.com/ErlanBelekov/account-service/internal/requestid"
)

const redacted = "[REDACTED]"

// Attribute keys whose values are never written to logs.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"access_token":  {},
	"authorization": {},
	"apikey":        {},
}

// ContextHandler wraps an slog.Handler. It adds request_id and user_id from
// the record's context and masks credential-bearing attributes.
type ContextHandler struct {
	inner slog.Handler
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redact(a))
		return true
	})

	if id := requestid.FromContext(ctx); id != "" {
		out.AddAttrs(slog.String("request_id", id))
	}
	if uid := authctx.UserID(ctx); uid != "" {
		out.AddAttrs(slog.String("user_id", uid))
	}
	return h.inner.Handle(ctx, out)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = redact(a)
	}
	return &ContextHandler{inner: h.inner.WithAttrs(masked)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}

func redact(a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]any, len(group))
		for i, ga := range group {
			masked[i] = redact(ga)
		}
		return slog.Group(a.Key, masked...)
	}
	return a
}
