package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/cypheracademy/certvault/internal/cert/cache"
	"github.com/cypheracademy/certvault/internal/cert/domain"
)

// newRedisClient spins up a disposable Redis container. Skipped in
// short mode since it needs a container runtime.
func newRedisClient(t *testing.T) *cache.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := cache.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestNewWithoutURL(t *testing.T) {
	client, err := cache.New(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, client, "empty url means redis is not configured")
}

func TestDenylist(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	denylist := cache.NewDenylist(client)

	t.Run("unknown jti not revoked", func(t *testing.T) {
		revoked, err := denylist.Revoked(ctx, "jti-unknown")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("revoke and check", func(t *testing.T) {
		require.NoError(t, denylist.Revoke(ctx, "jti-1", time.Minute))

		revoked, err := denylist.Revoked(ctx, "jti-1")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("entry expires with ttl", func(t *testing.T) {
		require.NoError(t, denylist.Revoke(ctx, "jti-2", 100*time.Millisecond))
		time.Sleep(200 * time.Millisecond)

		revoked, err := denylist.Revoked(ctx, "jti-2")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("empty jti is a no-op", func(t *testing.T) {
		require.NoError(t, denylist.Revoke(ctx, "", time.Minute))
		revoked, err := denylist.Revoked(ctx, "")
		require.NoError(t, err)
		require.False(t, revoked)
	})
}

func TestValidationCache(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	vc := cache.NewValidationCache(client, time.Minute)

	t.Run("miss returns nil", func(t *testing.T) {
		report, err := vc.Get(ctx, "QmMiss")
		require.NoError(t, err)
		require.Nil(t, report)
	})

	t.Run("set then get", func(t *testing.T) {
		expires := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		in := &domain.ValidationReport{
			IPFSHash:  "QmHit",
			Valid:     true,
			Expired:   false,
			ExpiresOn: &expires,
			CheckedAt: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, vc.Set(ctx, in))

		out, err := vc.Get(ctx, "QmHit")
		require.NoError(t, err)
		require.NotNil(t, out)
		require.True(t, out.Valid)
		require.Equal(t, in.IPFSHash, out.IPFSHash)
		require.True(t, in.ExpiresOn.Equal(*out.ExpiresOn))
	})

	t.Run("short ttl expires", func(t *testing.T) {
		short := cache.NewValidationCache(client, 100*time.Millisecond)
		require.NoError(t, short.Set(ctx, &domain.ValidationReport{IPFSHash: "QmShort", Valid: true}))
		time.Sleep(200 * time.Millisecond)

		report, err := short.Get(ctx, "QmShort")
		require.NoError(t, err)
		require.Nil(t, report)
	})
}
