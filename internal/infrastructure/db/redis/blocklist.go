package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	blocklistPrefix = "blocklist:"
	defaultEntryTTL = time.Hour
)

// Blocklist is the token revocation registry backed by Redis.
// Key format: blocklist:<jti>, expiring after the configured ttl.
type Blocklist struct {
	client *redis.Client
}

// NewBlocklist creates a Blocklist wrapping the given Redis client.
func NewBlocklist(client *redis.Client) *Blocklist {
	return &Blocklist{client: client}
}

// Revoke records jti as revoked for ttl (one hour when ttl <= 0). Revoking
// twice only refreshes the expiry.
func (b *Blocklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("revoke: empty jti")
	}
	if ttl <= 0 {
		ttl = defaultEntryTTL
	}
	if err := b.client.Set(ctx, b.key(jti), "", ttl).Err(); err != nil {
		return fmt.Errorf("revoke %s: %w", jti, err)
	}
	return nil
}

// IsRevoked reports whether jti is currently in the blocklist.
func (b *Blocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("blocklist check: %w", err)
	}
	return n > 0, nil
}

// Ping is used by the readiness probe.
func (b *Blocklist) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Blocklist) key(jti string) string {
	return blocklistPrefix + jti
}
