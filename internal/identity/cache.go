package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/metrics"
)

// Cache stores verified identities. Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*domain.Identity, error)
	Set(ctx context.Context, key string, ident *domain.Identity, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CachedVerifier remembers successful verifications for ttl so repeated
// requests with the same provider token skip the network round trip.
// Failures are never cached, and cache errors fall through to next.
type CachedVerifier struct {
	next   Verifier
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedVerifier(next Verifier, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedVerifier {
	return &CachedVerifier{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "identity_cache"),
	}
}

func (v *CachedVerifier) VerifyToken(ctx context.Context, raw string) (*domain.Identity, error) {
	key := cacheKey(raw)

	ident, err := v.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.IdentityCacheTotal.WithLabelValues("error").Inc()
		v.logger.WarnContext(ctx, "identity cache get", "error", err)
	case ident != nil:
		metrics.IdentityCacheTotal.WithLabelValues("hit").Inc()
		return ident, nil
	default:
		metrics.IdentityCacheTotal.WithLabelValues("miss").Inc()
	}

	ident, err = v.next.VerifyToken(ctx, raw)
	if err != nil {
		return nil, err
	}

	if err := v.cache.Set(ctx, key, ident, v.ttl); err != nil {
		v.logger.WarnContext(ctx, "identity cache set", "error", err)
	}
	return ident, nil
}

// Forget drops the cached identity for raw so a signed-out token is checked
// against the provider again.
func (v *CachedVerifier) Forget(ctx context.Context, raw string) error {
	return v.cache.Delete(ctx, cacheKey(raw))
}

// Raw tokens never reach the cache backend.
func cacheKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
