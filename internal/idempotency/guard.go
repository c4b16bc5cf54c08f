package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "intake:"

// Guard remembers recently seen intake requests so a chat workflow that
// retries a delivery does not create the same order twice. A nil *Guard
// accepts everything.
type Guard struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewGuard(client *redis.Client, ttl time.Duration) *Guard {
	return &Guard{Client: client, TTL: ttl}
}

// Key fingerprints the request parts into a fixed-size marker key.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Claim marks key as in use. It returns false when the key was already
// claimed within the TTL.
func (g *Guard) Claim(ctx context.Context, key string) (bool, error) {
	if g == nil || g.Client == nil {
		return true, nil
	}
	return g.Client.SetNX(ctx, key, "1", g.TTL).Result()
}

// Release forgets key, letting a failed request be retried right away.
func (g *Guard) Release(ctx context.Context, key string) error {
	if g == nil || g.Client == nil {
		return nil
	}
	return g.Client.Del(ctx, key).Err()
}
