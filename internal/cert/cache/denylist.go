package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key prefix for revoked token ids.
const denylistKeyPrefix = "denylist:jti:"

// Denylist is a Redis-backed revoked-token list. Logout writes the
// token's jti here with a TTL matching the token lifetime, so entries
// expire exactly when the token would have anyway.
type Denylist struct {
	client *Client
}

// NewDenylist wraps the shared Redis client. The client lifecycle is
// managed by the caller.
func NewDenylist(client *Client) *Denylist {
	return &Denylist{client: client}
}

// Revoke adds a jti to the denylist for ttl.
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	// The key existence is the marker, the value does not matter.
	return d.client.Set(ctx, denylistKeyPrefix+jti, "1", ttl).Err()
}

// Revoked reports whether the jti has been revoked. A missing key means
// not revoked or already expired.
func (d *Denylist) Revoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := d.client.Get(ctx, denylistKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
