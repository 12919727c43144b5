package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const identityKeyPrefix = "accounts:identity:"

// IdentityCache stores verified identities as JSON under a TTL.
type IdentityCache struct {
	client redis.Cmdable
}

func NewIdentityCache(client redis.Cmdable) *IdentityCache {
	return &IdentityCache{client: client}
}

type cachedIdentity struct {
	ID         string `json:"id,omitempty"`
	Email      string `json:"email"`
	Audience   string `json:"aud"`
	ExternalID string `json:"ext,omitempty"`
}

func (c *IdentityCache) Get(ctx context.Context, key string) (*domain.Identity, error) {
	raw, err := c.client.Get(ctx, identityKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}

	var ci cachedIdentity
	if err := json.Unmarshal(raw, &ci); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &domain.Identity{
		ID:         ci.ID,
		Email:      ci.Email,
		Audience:   ci.Audience,
		ExternalID: ci.ExternalID,
	}, nil
}

func (c *IdentityCache) Set(ctx context.Context, key string, ident *domain.Identity, ttl time.Duration) error {
	raw, err := json.Marshal(cachedIdentity{
		ID:         ident.ID,
		Email:      ident.Email,
		Audience:   ident.Audience,
		ExternalID: ident.ExternalID,
	})
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := c.client.Set(ctx, identityKeyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set identity: %w", err)
	}
	return nil
}

func (c *IdentityCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, identityKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}
