package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/cypheracademy/certvault/internal/cert/audit"
	"github.com/cypheracademy/certvault/internal/cert/cache"
	"github.com/cypheracademy/certvault/internal/cert/domain"
	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/pkg/jwtx"
)

func TestTokenService(t *testing.T) {
	signer, err := jwtx.NewEphemeralSignerEdDSA()
	require.NoError(t, err)

	tokens := &service.TokenService{
		Signer:    signer,
		Issuer:    "certvault",
		Audience:  []string{"certvault-api"},
		AccessTTL: 30 * time.Minute,
	}

	user := domain.User{
		ID:       "01USER",
		Email:    "ada@example.org",
		FullName: "Ada Lovelace",
		Role:     domain.RoleIssuer,
	}

	t.Run("issued token carries role scopes", func(t *testing.T) {
		token, expiresIn, err := tokens.IssueAccessToken(user)
		require.NoError(t, err)
		require.Equal(t, int((30 * time.Minute).Seconds()), expiresIn)

		verifier := jwtx.NewVerifierEdDSA(signer.PublicKey(), "certvault", []string{"certvault-api"})
		claims, err := verifier.Verify(token)
		require.NoError(t, err)

		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, "issuer", claims.Role)
		require.ElementsMatch(t, domain.RoleIssuer.Scopes(), claims.Scopes)
		require.NotEmpty(t, claims.ID)
	})

	t.Run("revoke without denylist is a no-op", func(t *testing.T) {
		token, _, err := tokens.IssueAccessToken(user)
		require.NoError(t, err)

		verifier := jwtx.NewVerifierEdDSA(signer.PublicKey(), "certvault", nil)
		claims, err := verifier.Verify(token)
		require.NoError(t, err)

		require.NoError(t, tokens.Revoke(context.Background(), claims))
	})
}

func TestTokenServiceRevokeAudit(t *testing.T) {
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

	s := newTestStore(t)
	recorder := audit.NewRecorder(s.AuditEvents(), testLogger(), 16)
	recorder.Start()

	signer, err := jwtx.NewEphemeralSignerEdDSA()
	require.NoError(t, err)

	tokens := &service.TokenService{
		Signer:    signer,
		Issuer:    "certvault",
		AccessTTL: 30 * time.Minute,
		Denylist:  cache.NewDenylist(client),
		Audit:     recorder,
	}

	user := domain.User{ID: "01USER", Email: "ada@example.org", Role: domain.RoleIssuer}
	token, _, err := tokens.IssueAccessToken(user)
	require.NoError(t, err)

	verifier := jwtx.NewVerifierEdDSA(signer.PublicKey(), "certvault", nil)
	claims, err := verifier.Verify(token)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, claims))
	recorder.Stop()

	events, err := s.AuditEvents().ListRecentAuditEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, domain.AuditUserLoggedOut, events[0].Kind)
	require.Equal(t, user.ID, events[0].ActorID)
	require.Equal(t, user.Email, events[0].Subject)
}
